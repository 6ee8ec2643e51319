package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// GetProductVariations lists a product's variations ordered by type.
func GetProductVariations(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productId"]

	var variations []models.ProductVariation
	if err := config.DB.Where("product_id = ?", productID).
		Order("variation_type asc").Find(&variations).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch product variations")
		return
	}
	writeJSON(w, http.StatusOK, variations)
}

// SearchProductVariations filters a product's variations by value,
// case-insensitively: GET /api/products/{productId}/variations/search/{size}
func SearchProductVariations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID := vars["productId"]
	size := vars["size"]

	var variations []models.ProductVariation
	if err := config.DB.Where("product_id = ? AND variation_value ILIKE ?", productID, "%"+size+"%").
		Order("variation_type asc").Find(&variations).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search product variations")
		return
	}
	writeJSON(w, http.StatusOK, variations)
}

func GetProductVariation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var variation models.ProductVariation
	if err := config.DB.Where("id = ? AND product_id = ?", vars["id"], vars["productId"]).
		First(&variation).Error; err != nil {
		writeError(w, http.StatusNotFound, "product variation not found")
		return
	}
	writeJSON(w, http.StatusOK, variation)
}

type variationReq struct {
	VariationType   string   `json:"variationType"`
	VariationValue  string   `json:"variationValue"`
	PriceAdjustment *float64 `json:"priceAdjustment"`
	IsActive        *bool    `json:"isActive"`
}

func CreateProductVariation(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productId"]

	var product models.Product
	if err := config.DB.First(&product, "id = ?", productID).Error; err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req variationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.VariationType == "" || req.VariationValue == "" {
		writeError(w, http.StatusBadRequest, "variation type and value are required")
		return
	}

	// The unique index backs this up; checking first gives the client
	// a clean 400 instead of a mapped constraint error.
	var dup int64
	config.DB.Model(&models.ProductVariation{}).
		Where("product_id = ? AND variation_type = ? AND variation_value = ?",
			product.ID, req.VariationType, req.VariationValue).
		Count(&dup)
	if dup > 0 {
		writeError(w, http.StatusBadRequest, "variation already exists for this product")
		return
	}

	variation := models.ProductVariation{
		ProductID:       product.ID,
		VariationType:   req.VariationType,
		VariationValue:  req.VariationValue,
		PriceAdjustment: req.PriceAdjustment,
		IsActive:        true,
	}
	if req.IsActive != nil {
		variation.IsActive = *req.IsActive
	}

	if err := config.DB.Create(&variation).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create product variation")
		return
	}
	writeJSON(w, http.StatusCreated, variation)
}

func UpdateProductVariation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var variation models.ProductVariation
	if err := config.DB.Where("id = ? AND product_id = ?", vars["id"], vars["productId"]).
		First(&variation).Error; err != nil {
		writeError(w, http.StatusNotFound, "product variation not found")
		return
	}

	var req variationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	newType := variation.VariationType
	newValue := variation.VariationValue
	if req.VariationType != "" {
		newType = req.VariationType
	}
	if req.VariationValue != "" {
		newValue = req.VariationValue
	}
	if newType != variation.VariationType || newValue != variation.VariationValue {
		var dup int64
		config.DB.Model(&models.ProductVariation{}).
			Where("product_id = ? AND variation_type = ? AND variation_value = ? AND id <> ?",
				variation.ProductID, newType, newValue, variation.ID).
			Count(&dup)
		if dup > 0 {
			writeError(w, http.StatusBadRequest, "variation already exists for this product")
			return
		}
	}

	variation.VariationType = newType
	variation.VariationValue = newValue
	if req.PriceAdjustment != nil {
		variation.PriceAdjustment = req.PriceAdjustment
	}
	if req.IsActive != nil {
		variation.IsActive = *req.IsActive
	}

	if err := config.DB.Save(&variation).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update product variation")
		return
	}
	writeJSON(w, http.StatusOK, variation)
}

func DeleteProductVariation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var variation models.ProductVariation
	if err := config.DB.Where("id = ? AND product_id = ?", vars["id"], vars["productId"]).
		First(&variation).Error; err != nil {
		writeError(w, http.StatusNotFound, "product variation not found")
		return
	}
	if err := config.DB.Delete(&variation).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete product variation")
		return
	}
	writeMessage(w, http.StatusOK, "product variation deleted")
}
