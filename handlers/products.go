package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// GetAllProducts lists products with search/category filters:
// GET /api/products?search=&category=&isActive=&page=&limit=
func GetAllProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := config.DB.Model(&models.Product{}).Preload("Variations").Preload("Material")

	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}
	if category := r.URL.Query().Get("category"); category != "" && category != "all" {
		q = q.Where("category = ?", category)
	}
	if active := r.URL.Query().Get("isActive"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count products")
		return
	}

	var products []models.Product
	if err := q.Order("name asc").Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: products, Page: page, Limit: limit, Total: total})
}

type productReq struct {
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Category   string     `json:"category"`
	Price      *float64   `json:"price"`
	Unit       string     `json:"unit"`
	QtyOnHand  *int       `json:"qtyOnHand"`
	IsActive   *bool      `json:"isActive"`
	MaterialID *uuid.UUID `json:"materialId"`
}

func CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return
	}
	if req.MaterialID != nil {
		if err := config.DB.First(&models.Material{}, "id = ?", req.MaterialID).Error; err != nil {
			writeError(w, http.StatusBadRequest, "linked material not found")
			return
		}
	}

	product := models.Product{
		Name:       req.Name,
		Code:       req.Code,
		Category:   req.Category,
		Unit:       "pcs",
		IsActive:   true,
		MaterialID: req.MaterialID,
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if req.QtyOnHand != nil {
		product.QtyOnHand = *req.QtyOnHand
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := config.DB.Create(&product).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeError(w, http.StatusBadRequest, "product code already exists")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to create product")
		}
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var product models.Product
	if err := config.DB.Preload("Variations").Preload("Material").First(&product, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var product models.Product
	if err := config.DB.First(&product, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Code != "" {
		product.Code = req.Code
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.QtyOnHand != nil {
		product.QtyOnHand = *req.QtyOnHand
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.MaterialID != nil {
		if err := config.DB.First(&models.Material{}, "id = ?", req.MaterialID).Error; err != nil {
			writeError(w, http.StatusBadRequest, "linked material not found")
			return
		}
		product.MaterialID = req.MaterialID
	}

	if err := config.DB.Save(&product).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeError(w, http.StatusBadRequest, "product code already exists")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var product models.Product
	if err := config.DB.First(&product, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var ordered int64
	config.DB.Model(&models.OrderProduct{}).Where("product_id = ?", product.ID).Count(&ordered)
	if ordered > 0 {
		writeError(w, http.StatusBadRequest, "product is referenced by orders and cannot be deleted")
		return
	}

	if err := config.DB.Delete(&product).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	writeMessage(w, http.StatusOK, "product deleted")
}
