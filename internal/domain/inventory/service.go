// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"gorm.io/gorm"
)

// Audit row source labels
const (
	SourceAdminUpdate = "Admin Update"
	SourceBulkUpdate  = "Bulk Update"
	SourceGRN         = "GRN"
	SourceReset       = "Scheduled Reset"
)

var (
	// ErrRecordNotFound is returned when no (store, SKU) row exists
	ErrRecordNotFound = errors.New("inventory record not found")

	// ErrAlreadyPresent is the domain-level translation of the unique
	// constraint on (store, SKU)
	ErrAlreadyPresent = errors.New("inventory record already present for store and sku")
)

// SyncEnqueuer writes a warehouse-push outbox row inside the caller's
// transaction, so the local change and the "unsynced" marker commit together.
type SyncEnqueuer interface {
	EnqueueInventoryPush(tx *gorm.DB, storeID uint, skuCode string, available, salePrice float64) error
}

// Service handles inventory ledger business logic
type Service struct {
	db       *gorm.DB
	config   *config.Config
	log      *logrus.Logger
	audit    *auditWriter
	buffers  BufferProvider
	notifier PurchaseNotifier
	sync     SyncEnqueuer
}

// NewService creates a new inventory service. notifier and sync may be nil.
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, buffers BufferProvider, notifier PurchaseNotifier, sync SyncEnqueuer) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		log:      log,
		audit:    newAuditWriter(log),
		buffers:  buffers,
		notifier: notifier,
		sync:     sync,
	}
}

// CreateRecordRequest maps a SKU into a store. Records start with zero stock.
type CreateRecordRequest struct {
	StoreID       uint           `json:"store_id" binding:"required"`
	SKUCode       string         `json:"sku_code" binding:"required"`
	MarketPrice   float64        `json:"market_price" binding:"gte=0"`
	SalePrice     float64        `json:"sale_price" binding:"gte=0"`
	PriceBrackets []PriceBracket `json:"price_brackets,omitempty"`
	BracketSpec   string         `json:"bracket_spec,omitempty"`
}

// StockUpdateRequest declares a new committed total for one (store, SKU) row
type StockUpdateRequest struct {
	StoreID       uint     `json:"store_id" binding:"required"`
	SKUCode       string   `json:"sku_code" binding:"required"`
	Total         float64  `json:"total" binding:"gte=0"`
	ResetQuantity *float64 `json:"reset_quantity,omitempty"`
}

// CreateRecord creates the (store, SKU) row with zero stock. A duplicate
// mapping surfaces as ErrAlreadyPresent.
func (s *Service) CreateRecord(req *CreateRecordRequest, actor string) (*InventoryRecord, error) {
	brackets := req.PriceBrackets
	if req.BracketSpec != "" {
		parsed, err := ParseBracketSpec(req.BracketSpec, s.config.Pricing.BracketUnboundedMinimum)
		if err != nil {
			return nil, err
		}
		brackets = parsed
	}
	if len(brackets) > 0 {
		if err := ValidateBrackets(brackets, s.config.Pricing.BracketUnboundedMinimum); err != nil {
			return nil, err
		}
	}

	record := &InventoryRecord{
		StoreID:       req.StoreID,
		SKUCode:       req.SKUCode,
		MarketPrice:   req.MarketPrice,
		SalePrice:     req.SalePrice,
		PriceBrackets: brackets,
		IsActive:      true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("sku %s in store %d: %w", req.SKUCode, req.StoreID, ErrAlreadyPresent)
			}
			return fmt.Errorf("failed to create inventory record: %w", err)
		}
		if s.sync != nil {
			if err := s.sync.EnqueueInventoryPush(tx, record.StoreID, record.SKUCode, record.AvailableQuantity, record.SalePrice); err != nil {
				return fmt.Errorf("failed to enqueue warehouse push: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"store_id": req.StoreID,
		"sku_code": req.SKUCode,
		"actor":    actor,
	}).Info("Inventory record created")

	return record, nil
}

// GetRecord loads one (store, SKU) row
func (s *Service) GetRecord(storeID uint, skuCode string) (*InventoryRecord, error) {
	var record InventoryRecord
	err := s.db.Where("store_id = ? AND sku_code = ?", storeID, skuCode).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sku %s in store %d: %w", skuCode, storeID, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to load inventory record: %w", err)
	}
	return &record, nil
}

// GetStoreRecords loads the active records for a store
func (s *Service) GetStoreRecords(storeID uint) ([]InventoryRecord, error) {
	var records []InventoryRecord
	err := s.db.Where("store_id = ? AND is_active = ?", storeID, true).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load records for store %d: %w", storeID, err)
	}
	return records, nil
}

// UpdateStock applies one reserve-to-total update with an audit row
func (s *Service) UpdateStock(req *StockUpdateRequest, actor, source string) (*InventoryRecord, error) {
	var updated *InventoryRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := lockRecord(tx, req.StoreID, req.SKUCode)
		if err != nil {
			return err
		}

		before := record.AvailableQuantity
		if err := ReserveToTotal(record, req.Total, req.ResetQuantity); err != nil {
			return err
		}

		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("failed to update record for sku %s: %w", req.SKUCode, err)
		}

		entry := &InventoryMovementLogEntry{
			StoreID:      req.StoreID,
			SKUCode:      req.SKUCode,
			Source:       source,
			Delta:        Round3(record.AvailableQuantity - before),
			FromQuantity: before,
			ToQuantity:   record.AvailableQuantity,
			Bucket:       BucketSale,
			MovementType: MovementTypeAdminAdjustment,
			Actor:        actor,
			CreatedAt:    time.Now(),
		}
		if err := s.audit.Append(tx, entry); err != nil {
			return fmt.Errorf("failed to write adjustment log: %w", err)
		}

		if s.sync != nil {
			if err := s.sync.EnqueueInventoryPush(tx, record.StoreID, record.SKUCode, record.AvailableQuantity, record.SalePrice); err != nil {
				return fmt.Errorf("failed to enqueue warehouse push: %w", err)
			}
		}

		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// BulkUpdateStock applies reserve-to-total updates for many rows in one
// transaction. Any failing row aborts the whole batch.
func (s *Service) BulkUpdateStock(requests []StockUpdateRequest, actor, source string) error {
	if len(requests) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range requests {
			req := &requests[i]
			record, err := lockRecord(tx, req.StoreID, req.SKUCode)
			if err != nil {
				return err
			}

			before := record.AvailableQuantity
			if err := ReserveToTotal(record, req.Total, req.ResetQuantity); err != nil {
				return err
			}

			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("failed to update record for sku %s: %w", req.SKUCode, err)
			}

			entry := &InventoryMovementLogEntry{
				StoreID:      req.StoreID,
				SKUCode:      req.SKUCode,
				Source:       source,
				Delta:        Round3(record.AvailableQuantity - before),
				FromQuantity: before,
				ToQuantity:   record.AvailableQuantity,
				Bucket:       BucketSale,
				MovementType: MovementTypeAdminAdjustment,
				Actor:        actor,
				CreatedAt:    time.Now(),
			}
			if err := s.audit.Append(tx, entry); err != nil {
				return fmt.Errorf("failed to write adjustment log: %w", err)
			}
		}
		return nil
	})
}

// PatchRecord applies a partial update to one row after validating any bracket
// list it carries
func (s *Service) PatchRecord(storeID uint, skuCode string, patch *RecordPatch, actor string) (*InventoryRecord, error) {
	if patch.PriceBrackets != nil {
		if err := ValidateBrackets(*patch.PriceBrackets, s.config.Pricing.BracketUnboundedMinimum); err != nil {
			return nil, err
		}
	}

	var updated *InventoryRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := lockRecord(tx, storeID, skuCode)
		if err != nil {
			return err
		}

		patch.Apply(record)

		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("failed to patch record for sku %s: %w", skuCode, err)
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"store_id": storeID,
		"sku_code": skuCode,
		"actor":    actor,
	}).Info("Inventory record patched")

	return updated, nil
}

// ResetAvailableQuantities restores every active record in the store to its
// reset quantity. Triggered externally on a schedule; runs synchronously.
func (s *Service) ResetAvailableQuantities(storeID uint, actor string) (int, error) {
	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var records []InventoryRecord
		err := tx.Where("store_id = ? AND is_active = ?", storeID, true).Find(&records).Error
		if err != nil {
			return fmt.Errorf("failed to load records for store %d: %w", storeID, err)
		}

		for i := range records {
			record := &records[i]
			if Round3(record.AvailableQuantity) == Round3(record.ResetQuantity) {
				continue
			}

			before := record.AvailableQuantity
			record.AvailableQuantity = Round3(record.ResetQuantity)
			record.CommittedTotal = record.AvailableQuantity

			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("failed to reset sku %s: %w", record.SKUCode, err)
			}

			entry := &InventoryMovementLogEntry{
				StoreID:      storeID,
				SKUCode:      record.SKUCode,
				Source:       SourceReset,
				Delta:        Round3(record.AvailableQuantity - before),
				FromQuantity: before,
				ToQuantity:   record.AvailableQuantity,
				Bucket:       BucketSale,
				MovementType: MovementTypeReset,
				Actor:        actor,
				CreatedAt:    time.Now(),
			}
			if err := s.audit.Append(tx, entry); err != nil {
				return fmt.Errorf("failed to write reset log: %w", err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"store_id": storeID, "count": count}).
		Info("Scheduled reset applied")
	return count, nil
}

// Deactivate soft-deletes the row; records are never hard-deleted
func (s *Service) Deactivate(storeID uint, skuCode string, actor string) error {
	result := s.db.Model(&InventoryRecord{}).
		Where("store_id = ? AND sku_code = ?", storeID, skuCode).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sku %s in store %d: %w", skuCode, storeID, ErrRecordNotFound)
	}

	s.log.WithFields(logrus.Fields{
		"store_id": storeID,
		"sku_code": skuCode,
		"actor":    actor,
	}).Info("Inventory record deactivated")
	return nil
}

// GetMovementLog returns the audit trail for one (store, SKU) row, newest first
func (s *Service) GetMovementLog(storeID uint, skuCode string, limit int) ([]InventoryMovementLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	var entries []InventoryMovementLogEntry
	err := s.db.Where("store_id = ? AND sku_code = ?", storeID, skuCode).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load movement log: %w", err)
	}
	return entries, nil
}

// isUniqueViolation detects the (store, SKU) unique constraint breach
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres unique_violation is SQLSTATE 23505
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
