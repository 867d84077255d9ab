// internal/domain/inventory/audit.go
package inventory

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// auditWriter is the append-only sink for movement log entries. There are no
// update or delete paths on this entity.
type auditWriter struct {
	log *logrus.Logger
}

func newAuditWriter(log *logrus.Logger) *auditWriter {
	return &auditWriter{log: log}
}

// Append writes log entries within the caller's transaction. Batch mutations
// call this so that log rows commit or roll back with the quantity change.
func (w *auditWriter) Append(tx *gorm.DB, entries ...*InventoryMovementLogEntry) error {
	for _, entry := range entries {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// AppendBestEffort writes log entries outside any transaction. Failures are
// logged and swallowed: a logging failure must never block a stock mutation
// that already committed.
func (w *auditWriter) AppendBestEffort(db *gorm.DB, entries ...*InventoryMovementLogEntry) {
	for _, entry := range entries {
		if err := db.Create(entry).Error; err != nil {
			w.log.WithFields(logrus.Fields{
				"sku_code":      entry.SKUCode,
				"store_id":      entry.StoreID,
				"movement_type": entry.MovementType,
			}).WithError(err).Error("Failed to write inventory movement log entry")
		}
	}
}
