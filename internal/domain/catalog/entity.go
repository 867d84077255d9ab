// internal/domain/catalog/entity.go
package catalog

import (
	"time"
)

// Product is the catalog-side view of a SKU. The inventory core reads
// bufferQuantity and classification data from here; the discount engine may
// write procurement/display overrides when a flat discount wins.
type Product struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	SKUCode              string     `gorm:"uniqueIndex;not null;size:100" json:"sku_code"`
	Name                 string     `gorm:"not null;size:255" json:"name"`
	Description          string     `gorm:"type:text" json:"description"`
	CategoryCode         string     `gorm:"size:100;index" json:"category_code"`
	Grade                string     `gorm:"size:50" json:"grade"`
	MOQ                  float64    `gorm:"default:0" json:"moq"`
	ProcurementCategory  string     `gorm:"size:100" json:"procurement_category"`
	BufferQuantity       float64    `gorm:"not null;default:0" json:"buffer_quantity"` // safety floor for deductions
	MaxOrderQuantity     *float64   `json:"max_order_quantity,omitempty"`
	DisplayQty           *float64   `json:"display_qty,omitempty"`
	ProcurementTag       string     `gorm:"size:100" json:"procurement_tag,omitempty"`
	ProcurementTagExpiry *time.Time `json:"procurement_tag_expiry,omitempty"`
	UnitOfMeasure        string     `gorm:"size:20" json:"unit_of_measure"`
	IsActive             bool       `gorm:"default:true" json:"is_active"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Product) TableName() string { return "products" }
