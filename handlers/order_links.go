package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// Typed gate errors so callers can map them to 404 vs 400.
var (
	errLinkNotFound = errors.New("order link not found")
	errLinkExpired  = errors.New("order link has expired")
	errLinkInactive = errors.New("order link has been deactivated")
)

// resolveOrderLink is the access gate for every portal route: it turns
// a path token into a usable link or a typed error. Unknown tokens are
// distinct from expired/deactivated ones (404 vs 400).
func resolveOrderLink(db *gorm.DB, token string) (*models.OrderLink, error) {
	var link models.OrderLink
	if err := db.Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLinkNotFound
		}
		return nil, err
	}
	if !link.IsActive {
		return nil, errLinkInactive
	}
	if link.IsExpired() {
		return nil, errLinkExpired
	}
	return &link, nil
}

func writeLinkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errLinkNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errLinkExpired), errors.Is(err, errLinkInactive):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "failed to resolve order link")
	}
}

type orderLinkResponse struct {
	OrderLink  *models.OrderLink        `json:"orderLink"`
	Completion models.CompletionSummary `json:"completion"`
}

// GetOrderLinkByToken serves the public portal payload:
// GET /api/order-links/{token}
func GetOrderLinkByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	link, err := resolveOrderLink(config.DB, token)
	if err != nil {
		writeLinkError(w, err)
		return
	}

	if err := config.DB.
		Preload("Order.OrderProducts.Product").
		Preload("Order.ProgressReports", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Preload("Order.MaterialMovements.Material").
		Preload("Order.Worker").
		Preload("User").
		First(link, "id = ?", link.ID).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if link.User != nil {
		link.User.PasswordHash = ""
	}

	completion := models.CompletionSummary{}
	if link.Order != nil {
		completion = models.RollupCompletion(link.Order.TargetPcs, link.Order.OrderProducts)
	}

	writeJSON(w, http.StatusOK, orderLinkResponse{OrderLink: link, Completion: completion})
}

type materialUsageReq struct {
	MaterialID uuid.UUID `json:"materialId"`
	Quantity   float64   `json:"quantity"`
	Notes      string    `json:"notes"`
}

// SubmitMaterialUsage records material consumed against the linked
// order: POST /api/order-links/{token}/materials
func SubmitMaterialUsage(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	link, err := resolveOrderLink(config.DB, token)
	if err != nil {
		writeLinkError(w, err)
		return
	}

	var req materialUsageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MaterialID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "please select a material")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be greater than 0")
		return
	}

	var movement models.MaterialMovement
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var material models.Material
		if err := tx.First(&material, "id = ?", req.MaterialID).Error; err != nil {
			return errors.New("material not found")
		}
		if material.StockQty < req.Quantity {
			return errors.New("insufficient material stock")
		}

		movement = models.MaterialMovement{
			MaterialID:   material.ID,
			OrderID:      &link.OrderID,
			Quantity:     req.Quantity,
			Unit:         material.Unit,
			MovementType: models.MovementOut,
			Notes:        req.Notes,
			MovementDate: models.JSONTime(time.Now()),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		return tx.Model(&material).
			Update("stock_qty", gorm.Expr("stock_qty - ?", req.Quantity)).Error
	})
	if err != nil {
		switch err.Error() {
		case "material not found":
			writeError(w, http.StatusNotFound, err.Error())
		case "insufficient material stock":
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to record material usage")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Material usage recorded successfully",
		"movement": movement,
	})
}
