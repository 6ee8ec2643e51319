package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Movement types. MASUK adds to stock, KELUAR consumes it.
const (
	MovementIn  = "MASUK"
	MovementOut = "KELUAR"
)

// Material is a raw material (fabric, thread, buttons) tracked with an
// on-hand stock quantity.
type Material struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"not null;index" json:"name"`
	Code         string     `gorm:"uniqueIndex;not null" json:"code"`
	Unit         string     `gorm:"not null;default:'meter'" json:"unit"`
	StockQty     float64    `gorm:"not null;default:0" json:"stockQty"`
	PricePerUnit float64    `gorm:"not null;default:0" json:"pricePerUnit"`
	SupplierID   *uuid.UUID `gorm:"type:uuid;index" json:"supplierId,omitempty"`
	Supplier     *Contact   `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MaterialMovement records stock going in or out of a material,
// optionally tied to the order/product that consumed it. Movements are
// append-only; stock corrections are written as compensating movements.
type MaterialMovement struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MaterialID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"materialId"`
	Material     *Material  `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	OrderID      *uuid.UUID `gorm:"type:uuid;index" json:"orderId,omitempty"`
	ProductID    *uuid.UUID `gorm:"type:uuid;index" json:"productId,omitempty"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	Unit         string     `gorm:"not null" json:"unit"`
	MovementType string     `gorm:"not null;index" json:"movementType"` // MASUK, KELUAR
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	MovementDate JSONTime   `gorm:"not null" json:"movementDate"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
