package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"jahit.id/workshop/config"
	"jahit.id/workshop/middleware"
	"jahit.id/workshop/models"
)

// GetAllOrders lists orders: GET /api/orders?status=&search=&page=&limit=
func GetAllOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := config.DB.Model(&models.Order{}).Preload("OrderProducts.Product").Preload("Worker").Preload("Customer")

	if status := r.URL.Query().Get("status"); status != "" && status != "all" {
		if !models.IsValidOrderStatus(status) {
			writeError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		q = q.Where("status = ?", status)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("order_number ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count orders")
		return
	}

	var orders []models.Order
	if err := q.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&orders).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: orders, Page: page, Limit: limit, Total: total})
}

type orderProductReq struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice *float64  `json:"unitPrice"`
}

type orderReq struct {
	OrderNumber  string            `json:"orderNumber"`
	Status       string            `json:"status"`
	TargetPcs    *int              `json:"targetPcs"`
	DueDate      *models.JSONTime  `json:"dueDate"`
	Description  string            `json:"description"`
	CustomerNote string            `json:"customerNote"`
	CustomerID   *uuid.UUID        `json:"customerId"`
	WorkerID     *uuid.UUID        `json:"workerId"`
	Products     []orderProductReq `json:"products"`
}

func CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, "order must contain at least one product")
		return
	}
	seen := make(map[uuid.UUID]bool, len(req.Products))
	for _, p := range req.Products {
		if p.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "product quantity must be greater than 0")
			return
		}
		if seen[p.ProductID] {
			writeError(w, http.StatusBadRequest, "order lists the same product more than once")
			return
		}
		seen[p.ProductID] = true
	}
	if req.Status == "" {
		req.Status = models.OrderDraft
	}
	if !models.IsValidOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid order status")
		return
	}
	if req.WorkerID != nil {
		var worker models.Contact
		if err := config.DB.First(&worker, "id = ?", req.WorkerID).Error; err != nil {
			writeError(w, http.StatusBadRequest, "assigned worker not found")
			return
		}
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = fmt.Sprintf("ORD-%s", time.Now().Format("20060102-150405"))
	}

	sumQty := 0
	for _, p := range req.Products {
		sumQty += p.Quantity
	}
	targetPcs := sumQty
	if req.TargetPcs != nil && *req.TargetPcs > 0 {
		targetPcs = *req.TargetPcs
	}

	order := models.Order{
		OrderNumber:  orderNumber,
		Status:       req.Status,
		TargetPcs:    targetPcs,
		DueDate:      req.DueDate,
		Description:  req.Description,
		CustomerNote: req.CustomerNote,
		CustomerID:   req.CustomerID,
		WorkerID:     req.WorkerID,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, p := range req.Products {
			var product models.Product
			if err := tx.First(&product, "id = ?", p.ProductID).Error; err != nil {
				return fmt.Errorf("product %s not found", p.ProductID)
			}
			op := models.OrderProduct{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  p.Quantity,
				UnitPrice: product.Price,
			}
			if p.UnitPrice != nil {
				op.UnitPrice = *p.UnitPrice
			}
			if err := tx.Create(&op).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeError(w, http.StatusBadRequest, "order number already exists")
		} else if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	config.DB.Preload("OrderProducts.Product").First(&order, "id = ?", order.ID)
	writeJSON(w, http.StatusCreated, order)
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var order models.Order
	if err := config.DB.
		Preload("OrderProducts.Product").
		Preload("ProgressReports", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Preload("MaterialMovements.Material").
		Preload("Worker").Preload("Customer").
		First(&order, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var order models.Order
	if err := config.DB.First(&order, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	var req orderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != "" {
		if !models.IsValidOrderStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		order.Status = req.Status
	}
	if req.OrderNumber != "" {
		order.OrderNumber = req.OrderNumber
	}
	if req.TargetPcs != nil {
		if *req.TargetPcs < 0 {
			writeError(w, http.StatusBadRequest, "targetPcs cannot be negative")
			return
		}
		order.TargetPcs = *req.TargetPcs
	}
	if req.DueDate != nil {
		order.DueDate = req.DueDate
	}
	order.Description = req.Description
	order.CustomerNote = req.CustomerNote
	if req.CustomerID != nil {
		order.CustomerID = req.CustomerID
	}
	if req.WorkerID != nil {
		order.WorkerID = req.WorkerID
	}

	if err := config.DB.Save(&order).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var order models.Order
	if err := config.DB.First(&order, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err := config.DB.Delete(&order).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}
	writeMessage(w, http.StatusOK, "order deleted")
}

type createLinkReq struct {
	UserID    *uuid.UUID `json:"userId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// CreateOrderLink issues a portal token for an order:
// POST /api/orders/{id}/links
func CreateOrderLink(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var order models.Order
	if err := config.DB.First(&order, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	var req createLinkReq
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	link := models.OrderLink{
		Token:     uuid.NewString(),
		OrderID:   order.ID,
		UserID:    req.UserID,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
	}
	if claims := middleware.GetClaims(r); claims != nil {
		if creatorID, err := uuid.Parse(claims.UserID); err == nil {
			link.CreatedBy = &creatorID
		}
	}

	if err := config.DB.Create(&link).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create order link")
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// GetOrderLinks lists the portal tokens issued for an order.
func GetOrderLinks(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := config.DB.First(&models.Order{}, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	var links []models.OrderLink
	if err := config.DB.Where("order_id = ?", id).Order("created_at desc").Find(&links).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch order links")
		return
	}
	writeJSON(w, http.StatusOK, links)
}
