// internal/domain/discount/entity.go
package discount

import (
	"time"
)

// Kind scopes a discount program to a society or a marketing audience
type Kind string

const (
	KindSociety  Kind = "SOCIETY"
	KindAudience Kind = "AUDIENCE"
)

// SocietyGlobal is the reserved society identifier for the global fallback
// program applied to all qualifying shoppers.
const SocietyGlobal = "ALL"

// Type is the discount variant. An empty type is treated as PERCENTAGE.
type Type string

const (
	TypePercentage Type = "PERCENTAGE"
	TypeFlat       Type = "FLAT"
)

// SkuDiscount is one per-SKU entry of a discount program. It is never
// persisted standalone; rows belong to exactly one program version.
type SkuDiscount struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	ProgramID            uint       `gorm:"not null;index" json:"program_id"`
	SKUCode              string     `gorm:"not null;size:100;index" json:"sku_code"`
	Discount             float64    `gorm:"not null" json:"discount"`
	DiscountType         Type       `gorm:"size:20" json:"discount_type"`
	ReplaceWithSKUCode   string     `gorm:"size:100" json:"replace_with_sku_code,omitempty"`
	ProcurementTag       string     `gorm:"size:100" json:"procurement_tag,omitempty"`
	ProcurementTagExpiry *time.Time `json:"procurement_tag_expiry,omitempty"`
	MaxQuantity          *float64   `json:"max_quantity,omitempty"`
	DisplayQty           *float64   `json:"display_qty,omitempty"`
	IsMaximumPrice       bool       `gorm:"default:false" json:"is_maximum_price"` // copied from the owning program
}

// Program is a society- or audience-scoped discount rule set. Programs are
// soft-deactivated and superseded, never edited in place.
type Program struct {
	ID                     uint          `gorm:"primaryKey" json:"id"`
	Kind                   Kind          `gorm:"not null;size:20;index:idx_program_scope" json:"kind"`
	ScopeID                string        `gorm:"not null;size:100;index:idx_program_scope" json:"scope_id"`
	Name                   string        `gorm:"size:255" json:"name"`
	ValidDeliveryDate      time.Time     `gorm:"not null" json:"valid_delivery_date"`
	DefaultDiscountPercent *float64      `json:"default_discount_percent,omitempty"`
	IsMaximumPrice         bool          `gorm:"default:false" json:"is_maximum_price"`
	IsActive               bool          `gorm:"default:true;index" json:"is_active"`
	SkuDiscounts           []SkuDiscount `gorm:"foreignKey:ProgramID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sku_discounts,omitempty"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// TableName overrides
func (Program) TableName() string     { return "discount_programs" }
func (SkuDiscount) TableName() string { return "discount_program_skus" }

// EntriesFor returns the program's entries matching one SKU
func (p *Program) EntriesFor(skuCode string) []SkuDiscount {
	var entries []SkuDiscount
	for _, entry := range p.SkuDiscounts {
		if entry.SKUCode == skuCode {
			entries = append(entries, entry)
		}
	}
	return entries
}
