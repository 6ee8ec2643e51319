package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact types.
const (
	ContactSupplier = "SUPPLIER"
	ContactWorker   = "WORKER" // tailors; shown as "TAILOR" in the UI
	ContactCustomer = "CUSTOMER"
	ContactOther    = "OTHER"
)

// ContactNote priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Contact is a supplier, tailor, customer or other business contact.
type Contact struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"not null;index" json:"name"`
	ContactType   string    `gorm:"not null;index;default:'SUPPLIER'" json:"contactType"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	WhatsappPhone string    `json:"whatsappPhone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Company       string    `gorm:"not null;default:'-'" json:"company"`
	IsActive      bool      `gorm:"not null;default:true" json:"isActive"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`

	ContactNotes []ContactNote `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"contactNotes,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValidContactType reports whether t is one of the known contact types.
func IsValidContactType(t string) bool {
	switch t {
	case ContactSupplier, ContactWorker, ContactCustomer, ContactOther:
		return true
	}
	return false
}

// NormalizeCompany enforces the rule that only suppliers carry a real
// company name; every other type persists the "-" placeholder no
// matter what the client sent.
func (c *Contact) NormalizeCompany() {
	if c.ContactType != ContactSupplier {
		c.Company = "-"
	} else if c.Company == "" {
		c.Company = "-"
	}
}

// BeforeSave keeps the company rule authoritative at the ORM layer so
// no handler can bypass it.
func (c *Contact) BeforeSave(tx *gorm.DB) error {
	c.NormalizeCompany()
	return nil
}

// ContactNote is a free-text note attached to a contact, optionally
// flagged for follow-up.
type ContactNote struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContactID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"contactId"`
	NoteType      string     `gorm:"not null;default:'GENERAL'" json:"noteType"`
	Title         string     `gorm:"not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Priority      string     `gorm:"not null;default:'MEDIUM'" json:"priority"`
	NeedsFollowUp bool       `gorm:"not null;default:false" json:"needsFollowUp"`
	FollowUpDate  *JSONTime  `json:"followUpDate,omitempty"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedByName string     `json:"createdByName,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
