package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderDraft      = "draft"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Order is a production order: a target piece count spread over one or
// more products, worked on by an assigned tailor. CompletedPcs is
// derived — it is always recomputed as the sum of the order products'
// completed quantities inside the same transaction that changed them.
type Order struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber  string     `gorm:"uniqueIndex;not null" json:"orderNumber"`
	Status       string     `gorm:"not null;index;default:'draft'" json:"status"`
	TargetPcs    int        `gorm:"not null;default:0" json:"targetPcs"`
	CompletedPcs int        `gorm:"not null;default:0" json:"completedPcs"`
	DueDate      *JSONTime  `json:"dueDate,omitempty"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	CustomerNote string     `gorm:"type:text" json:"customerNote,omitempty"`
	CustomerID   *uuid.UUID `gorm:"type:uuid;index" json:"customerId,omitempty"`
	Customer     *Contact   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	WorkerID     *uuid.UUID `gorm:"type:uuid;index" json:"workerId,omitempty"`
	Worker       *Contact   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`

	OrderProducts     []OrderProduct     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderProducts,omitempty"`
	ProgressReports   []ProgressReport   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"progressReports,omitempty"`
	MaterialMovements []MaterialMovement `gorm:"foreignKey:OrderID" json:"materialMovements,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderDraft, OrderConfirmed, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// OrderProduct links an order to a product with a per-product target
// quantity and the quantity finished so far.
type OrderProduct struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_order_product" json:"orderId"`
	ProductID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_order_product" json:"productId"`
	Product      *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	CompletedQty int       `gorm:"not null;default:0" json:"completedQty"`
	UnitPrice    float64   `gorm:"not null;default:0" json:"unitPrice"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Remaining is the number of pieces still open on this line.
func (op OrderProduct) Remaining() int {
	if r := op.Quantity - op.CompletedQty; r > 0 {
		return r
	}
	return 0
}

// IsComplete reports whether the line has reached its target.
func (op OrderProduct) IsComplete() bool {
	return op.CompletedQty >= op.Quantity
}

// ProgressReport is one submission from a tailor: how many pieces were
// finished, optional shipping receipt number and photos. Reports are
// append-only — they are never updated or deleted.
type ProgressReport struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"orderId"`
	OrderProductID *uuid.UUID `gorm:"type:uuid;index" json:"orderProductId,omitempty"`
	ProductID      *uuid.UUID `gorm:"type:uuid;index" json:"productId,omitempty"`
	PcsFinished    int        `gorm:"not null" json:"pcsFinished"`
	PhotoURL       string     `json:"photoUrl,omitempty"`
	ResiPengiriman string     `json:"resiPengiriman,omitempty"` // shipping receipt number
	Note           string     `gorm:"type:text" json:"note,omitempty"`
	ReporterName   string     `gorm:"not null" json:"reporterName"`

	// Per-product detail fields from the order-progress form.
	MaterialUsed        float64        `gorm:"not null;default:0" json:"materialUsed"`
	WorkHours           float64        `gorm:"not null;default:0" json:"workHours"`
	QualityScore        int            `gorm:"not null;default:100" json:"qualityScore"`
	QualityNotes        string         `gorm:"type:text" json:"qualityNotes,omitempty"`
	Challenges          string         `gorm:"type:text" json:"challenges,omitempty"`
	EstimatedCompletion *JSONTime      `json:"estimatedCompletion,omitempty"`
	PhotoURLs           pq.StringArray `gorm:"type:text[]" json:"photoUrls"`
	Photos              datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"photos"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// OrderLink is a token-keyed access grant exposing one order to an
// unauthenticated bearer of the token. Valid until ExpiresAt (forever
// when null) unless deactivated.
type OrderLink struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"token"`
	OrderID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"orderId"`
	Order     *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	UserID    *uuid.UUID `gorm:"type:uuid" json:"userId,omitempty"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsActive  bool       `gorm:"not null;default:true" json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsExpired reports whether the link has passed its expiry date.
func (l OrderLink) IsExpired() bool {
	return l.ExpiresAt != nil && time.Now().After(*l.ExpiresAt)
}

// CompletionSummary is the order-level rollup over its order products.
type CompletionSummary struct {
	TotalProducts     int `json:"totalProducts"`
	CompletedProducts int `json:"completedProducts"`
	TargetPcs         int `json:"targetPcs"`
	CompletedPcs      int `json:"completedPcs"`
	Percent           int `json:"percent"`
}

// RollupCompletion computes the completion state for an order over its
// products. targetPcs is the order-level target; when it is zero the
// percentage falls back to the sum of product targets so a fully
// finished order still reads 100%.
func RollupCompletion(targetPcs int, products []OrderProduct) CompletionSummary {
	s := CompletionSummary{TotalProducts: len(products), TargetPcs: targetPcs}
	sumTargets := 0
	for _, op := range products {
		s.CompletedPcs += op.CompletedQty
		sumTargets += op.Quantity
		if op.IsComplete() {
			s.CompletedProducts++
		}
	}
	denom := targetPcs
	if denom <= 0 {
		denom = sumTargets
	}
	s.Percent = CompletionPercent(s.CompletedPcs, denom)
	return s
}

// CompletionPercent is round(completed/target*100) clamped to [0,100].
func CompletionPercent(completed, target int) int {
	if target <= 0 {
		return 0
	}
	p := int(math.Round(float64(completed) / float64(target) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// AllProductsComplete reports whether every line reached its target.
// An order with no products is never considered complete.
func AllProductsComplete(products []OrderProduct) bool {
	if len(products) == 0 {
		return false
	}
	for _, op := range products {
		if !op.IsComplete() {
			return false
		}
	}
	return true
}
