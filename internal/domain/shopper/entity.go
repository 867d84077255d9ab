// internal/domain/shopper/entity.go
package shopper

import (
	"time"
)

// Shopper is a customer known to the pricing pipeline
type Shopper struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ExternalID         string    `gorm:"uniqueIndex;not null;size:100" json:"external_id"`
	Name               string    `gorm:"size:255" json:"name"`
	Phone              string    `gorm:"size:20" json:"phone"`
	LifetimeOrderCount int       `gorm:"default:0" json:"lifetime_order_count"`
	IsActive           bool      `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relationships
	Addresses   []Address            `gorm:"foreignKey:ShopperID" json:"addresses,omitempty"`
	Memberships []AudienceMembership `gorm:"foreignKey:ShopperID" json:"memberships,omitempty"`
}

// Address carries the society the shopper belongs to
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShopperID uint      `gorm:"not null;index" json:"shopper_id"`
	SocietyID string    `gorm:"size:100;index" json:"society_id"`
	Line1     string    `gorm:"size:255" json:"line1"`
	City      string    `gorm:"size:100" json:"city"`
	Pincode   string    `gorm:"size:20" json:"pincode"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AudienceMembership maps a shopper into a marketing audience
type AudienceMembership struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ShopperID  uint      `gorm:"not null;index" json:"shopper_id"`
	AudienceID string    `gorm:"not null;size:100;index" json:"audience_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Shopper) TableName() string            { return "shoppers" }
func (Address) TableName() string            { return "shopper_addresses" }
func (AudienceMembership) TableName() string { return "shopper_audiences" }
