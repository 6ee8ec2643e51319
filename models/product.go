package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog item the workshop produces (e.g. "Kemeja Batik").
// A product may be linked to the base material it is cut from so that
// portal progress reports can record consumption against it.
type Product struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string     `gorm:"not null;index" json:"name"`
	Code       string     `gorm:"uniqueIndex;not null" json:"code"`
	Category   string     `gorm:"index" json:"category,omitempty"`
	Price      float64    `gorm:"not null;default:0" json:"price"`
	Unit       string     `gorm:"not null;default:'pcs'" json:"unit"`
	QtyOnHand  int        `gorm:"not null;default:0" json:"qtyOnHand"`
	IsActive   bool       `gorm:"not null;default:true" json:"isActive"`
	MaterialID *uuid.UUID `gorm:"type:uuid;index" json:"materialId,omitempty"`
	Material   *Material  `gorm:"foreignKey:MaterialID" json:"material,omitempty"`

	Variations []ProductVariation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variations,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProductVariation is a size/color child record. The
// (product, type, value) tuple is unique per product.
type ProductVariation struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_variation" json:"productId"`
	VariationType   string    `gorm:"not null;uniqueIndex:idx_product_variation" json:"variationType"`
	VariationValue  string    `gorm:"not null;uniqueIndex:idx_product_variation" json:"variationValue"`
	PriceAdjustment *float64  `json:"priceAdjustment,omitempty"`
	IsActive        bool      `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
