package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// GetMaterialsManagement lists materials with stock levels. Registered
// on a public route because the order-link portal reads it to populate
// the material-usage dropdown.
func GetMaterialsManagement(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := config.DB.Model(&models.Material{}).Where("is_active = ?", true)

	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count materials")
		return
	}

	var materials []models.Material
	if err := q.Order("name asc").Offset((page - 1) * limit).Limit(limit).Find(&materials).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch materials")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: materials, Page: page, Limit: limit, Total: total})
}

type materialReq struct {
	Name         string     `json:"name"`
	Code         string     `json:"code"`
	Unit         string     `json:"unit"`
	StockQty     *float64   `json:"stockQty"`
	PricePerUnit *float64   `json:"pricePerUnit"`
	SupplierID   *uuid.UUID `json:"supplierId"`
	IsActive     *bool      `json:"isActive"`
}

func CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return
	}
	if req.SupplierID != nil {
		var supplier models.Contact
		if err := config.DB.First(&supplier, "id = ?", req.SupplierID).Error; err != nil {
			writeError(w, http.StatusBadRequest, "supplier contact not found")
			return
		}
		if supplier.ContactType != models.ContactSupplier {
			writeError(w, http.StatusBadRequest, "linked contact is not a supplier")
			return
		}
	}

	material := models.Material{
		Name:       req.Name,
		Code:       req.Code,
		Unit:       "meter",
		SupplierID: req.SupplierID,
		IsActive:   true,
	}
	if req.Unit != "" {
		material.Unit = req.Unit
	}
	if req.StockQty != nil {
		material.StockQty = *req.StockQty
	}
	if req.PricePerUnit != nil {
		material.PricePerUnit = *req.PricePerUnit
	}
	if req.IsActive != nil {
		material.IsActive = *req.IsActive
	}

	// Opening stock is recorded as a MASUK movement so the ledger
	// explains the balance from day one; material and movement commit
	// together or not at all.
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&material).Error; err != nil {
			return err
		}
		if material.StockQty > 0 {
			movement := models.MaterialMovement{
				MaterialID:   material.ID,
				Quantity:     material.StockQty,
				Unit:         material.Unit,
				MovementType: models.MovementIn,
				Notes:        "Opening stock",
				MovementDate: models.JSONTime(time.Now()),
			}
			return tx.Create(&movement).Error
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeError(w, http.StatusBadRequest, "material code already exists")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to create material")
		}
		return
	}

	writeJSON(w, http.StatusCreated, material)
}

func GetMaterial(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var material models.Material
	if err := config.DB.Preload("Supplier").First(&material, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var material models.Material
	if err := config.DB.First(&material, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	var req materialReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name != "" {
		material.Name = req.Name
	}
	if req.Code != "" {
		material.Code = req.Code
	}
	if req.Unit != "" {
		material.Unit = req.Unit
	}
	if req.PricePerUnit != nil {
		material.PricePerUnit = *req.PricePerUnit
	}
	if req.IsActive != nil {
		material.IsActive = *req.IsActive
	}
	if req.SupplierID != nil {
		material.SupplierID = req.SupplierID
	}

	// Direct stock edits go through the movement ledger. The movement
	// and the material row commit in one transaction so the ledger
	// always explains the balance.
	var movement *models.MaterialMovement
	if req.StockQty != nil && *req.StockQty != material.StockQty {
		delta := *req.StockQty - material.StockQty
		movementType := models.MovementIn
		if delta < 0 {
			movementType = models.MovementOut
			delta = -delta
		}
		movement = &models.MaterialMovement{
			MaterialID:   material.ID,
			Quantity:     delta,
			Unit:         material.Unit,
			MovementType: movementType,
			Notes:        "Stock adjustment",
			MovementDate: models.JSONTime(time.Now()),
		}
		material.StockQty = *req.StockQty
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if movement != nil {
			if err := tx.Create(movement).Error; err != nil {
				return err
			}
		}
		return tx.Save(&material).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update material")
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var material models.Material
	if err := config.DB.First(&material, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	if err := config.DB.Delete(&material).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete material")
		return
	}
	writeMessage(w, http.StatusOK, "material deleted")
}

// GetMaterialMovements lists the movement ledger for one material,
// newest first.
func GetMaterialMovements(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	page, limit := parsePagination(r)

	if err := config.DB.First(&models.Material{}, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	q := config.DB.Model(&models.MaterialMovement{}).Where("material_id = ?", id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count movements")
		return
	}

	var movements []models.MaterialMovement
	if err := q.Order("movement_date desc").Offset((page - 1) * limit).Limit(limit).
		Find(&movements).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch movements")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: movements, Page: page, Limit: limit, Total: total})
}
