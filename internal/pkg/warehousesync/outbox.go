// internal/pkg/warehousesync/outbox.go
package warehousesync

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox entry statuses
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusFailed  = "failed"
)

// SyncOutboxEntry marks a local inventory/catalog change that still has to be
// pushed to the external warehouse service. The entry is written in the same
// transaction as the local change, so the two commit or roll back together;
// the push itself is retried asynchronously by Flush.
type SyncOutboxEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EntryID   string    `gorm:"uniqueIndex;not null;size:36" json:"entry_id"`
	StoreID   uint      `gorm:"not null;index" json:"store_id"`
	SKUCode   string    `gorm:"not null;size:100" json:"sku_code"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	Status    string    `gorm:"not null;size:20;default:'pending';index" json:"status"`
	Attempts  int       `gorm:"default:0" json:"attempts"`
	LastError string    `gorm:"size:500" json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncOutboxEntry) TableName() string { return "warehouse_sync_outbox" }

// Enqueue writes an outbox entry inside the caller's transaction
func Enqueue(tx *gorm.DB, storeID uint, skuCode, payload string) error {
	entry := &SyncOutboxEntry{
		EntryID: uuid.NewString(),
		StoreID: storeID,
		SKUCode: skuCode,
		Payload: payload,
		Status:  StatusPending,
	}
	return tx.Create(entry).Error
}
