// internal/domain/inventory/entity.go
package inventory

import (
	"math"
	"time"
)

// Bucket identifies one of the three quantity pools on an inventory record
type Bucket string

const (
	BucketSale Bucket = "SALE" // maps to AvailableQuantity
	BucketHold Bucket = "HOLD"
	BucketDump Bucket = "DUMP"
)

// validBucket reports whether b names one of the three quantity pools
func validBucket(b Bucket) bool {
	switch b {
	case BucketSale, BucketHold, BucketDump:
		return true
	}
	return false
}

// MovementType represents the type of inventory movement
type MovementType string

const (
	MovementTypeMovement        MovementType = "MOVEMENT"
	MovementTypeReceive         MovementType = "RECEIVE"
	MovementTypeGRN             MovementType = "GRN"
	MovementTypeAdminAdjustment MovementType = "ADMIN-ADJUSTMENT"
	MovementTypeDeduction       MovementType = "DEDUCTION"
	MovementTypeReset           MovementType = "RESET"
)

// PriceBracket is one quantity tier of a tiered pricing schedule
type PriceBracket struct {
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	SalePrice       float64 `json:"sale_price"`
	DiscountPercent float64 `json:"discount_percent"`
}

// InventoryRecord tracks one SKU's stock and pricing in one store.
// Rows are unique on (store, SKU) and are deactivated, never hard-deleted.
type InventoryRecord struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	StoreID           uint           `gorm:"not null;uniqueIndex:idx_store_sku" json:"store_id"`
	SKUCode           string         `gorm:"not null;size:100;uniqueIndex:idx_store_sku" json:"sku_code"`
	AvailableQuantity float64        `gorm:"not null;default:0" json:"available_quantity"`
	CommittedTotal    float64        `gorm:"not null;default:0" json:"committed_total"`
	HoldQuantity      float64        `gorm:"not null;default:0" json:"hold_quantity"`
	DumpQuantity      float64        `gorm:"not null;default:0" json:"dump_quantity"`
	MarketPrice       float64        `gorm:"not null;default:0" json:"market_price"`
	SalePrice         float64        `gorm:"not null;default:0" json:"sale_price"`
	MarketingPrice    *float64       `json:"marketing_price,omitempty"` // standing marketing override, set out-of-band
	MaxPrice          *float64       `json:"max_price,omitempty"`       // set only while a maximum-price program is active
	PriceBrackets     []PriceBracket `gorm:"serializer:json" json:"price_brackets,omitempty"`
	ResetQuantity     float64        `gorm:"not null;default:0" json:"reset_quantity"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	IsComplimentary   bool           `gorm:"default:false" json:"is_complimentary"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// InventoryMovementLogEntry is an append-only audit row for a single bucket
// change. Rows are never updated or deleted.
type InventoryMovementLogEntry struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	StoreID      uint         `gorm:"not null;index" json:"store_id"`
	SKUCode      string       `gorm:"not null;size:100;index" json:"sku_code"`
	Source       string       `gorm:"size:100" json:"source"`
	Delta        float64      `gorm:"not null" json:"delta"`
	FromQuantity float64      `gorm:"not null" json:"from_quantity"`
	ToQuantity   float64      `gorm:"not null" json:"to_quantity"`
	Bucket       Bucket       `gorm:"not null;size:10" json:"bucket"`
	MovementType MovementType `gorm:"not null;size:20" json:"movement_type"`
	Remarks      string       `gorm:"size:255" json:"remarks,omitempty"`
	Actor        string       `gorm:"size:100" json:"actor"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName overrides
func (InventoryRecord) TableName() string           { return "inventory_records" }
func (InventoryMovementLogEntry) TableName() string { return "inventory_movement_logs" }

// Round3 rounds quantity arithmetic to 3 decimal places. All quantity math goes
// through this before comparison and storage to avoid floating-point drift.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round2 rounds price/bound arithmetic to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ExternallyHeld returns the quantity already reserved by carts/orders outside
// this system: the committed total minus what is still sellable here.
func (r *InventoryRecord) ExternallyHeld() float64 {
	return Round3(r.CommittedTotal - r.AvailableQuantity)
}

// BucketQuantity returns the current quantity in the given bucket
func (r *InventoryRecord) BucketQuantity(b Bucket) float64 {
	switch b {
	case BucketSale:
		return r.AvailableQuantity
	case BucketHold:
		return r.HoldQuantity
	case BucketDump:
		return r.DumpQuantity
	}
	return 0
}

// SetBucketQuantity overwrites the quantity in the given bucket
func (r *InventoryRecord) SetBucketQuantity(b Bucket, qty float64) {
	switch b {
	case BucketSale:
		r.AvailableQuantity = qty
	case BucketHold:
		r.HoldQuantity = qty
	case BucketDump:
		r.DumpQuantity = qty
	}
}

// IsSellable reports whether the record participates in customer-facing listings
func (r *InventoryRecord) IsSellable() bool {
	return r.IsActive && !r.IsComplimentary
}
