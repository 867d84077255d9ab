// internal/domain/inventory/movement.go
package inventory

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSameBucket is returned when a transfer names the same source and
	// target bucket. Rejected before any mutation.
	ErrSameBucket = errors.New("source and target bucket must differ")

	// ErrInsufficientBucket is returned when a transfer would drive the source
	// bucket negative. The whole batch containing the move fails.
	ErrInsufficientBucket = errors.New("insufficient quantity in source bucket")

	// ErrUnknownBucket is returned when a request names a bucket outside
	// SALE/HOLD/DUMP. Rejected before any mutation; an unknown label must
	// never produce a saved record or a log row.
	ErrUnknownBucket = errors.New("unknown bucket")
)

// MoveRequest describes one bucket transfer on one record
type MoveRequest struct {
	StoreID uint    `json:"store_id" binding:"required"`
	SKUCode string  `json:"sku_code" binding:"required"`
	From    Bucket  `json:"from" binding:"required"`
	To      Bucket  `json:"to" binding:"required"`
	Qty     float64 `json:"qty" binding:"required,gt=0"`
}

// ReceiveRequest describes one bucket increment on one record
type ReceiveRequest struct {
	StoreID uint    `json:"store_id" binding:"required"`
	SKUCode string  `json:"sku_code" binding:"required"`
	Bucket  Bucket  `json:"bucket" binding:"required"`
	Qty     float64 `json:"qty" binding:"required,gt=0"`
	Remarks string  `json:"remarks,omitempty"`
}

// applyTransfer moves qty between two buckets on the record in memory.
// Quantity is conserved: the sum of the two buckets is unchanged.
func applyTransfer(record *InventoryRecord, from, to Bucket, qty float64) error {
	if !validBucket(from) {
		return fmt.Errorf("bucket %s: %w", from, ErrUnknownBucket)
	}
	if !validBucket(to) {
		return fmt.Errorf("bucket %s: %w", to, ErrUnknownBucket)
	}
	if from == to {
		return fmt.Errorf("bucket %s: %w", from, ErrSameBucket)
	}

	qty = Round3(qty)
	newFrom := Round3(record.BucketQuantity(from) - qty)
	if newFrom < 0 {
		return fmt.Errorf("sku %s bucket %s has %.3f, need %.3f: %w",
			record.SKUCode, from, record.BucketQuantity(from), qty, ErrInsufficientBucket)
	}

	record.SetBucketQuantity(from, newFrom)
	record.SetBucketQuantity(to, Round3(record.BucketQuantity(to)+qty))
	return nil
}

// Move atomically transfers quantity between buckets for a batch of records.
// Every record change and every log row is persisted, or none are. Each
// transfer emits exactly two log rows: the decrement on the source bucket and
// the increment on the target bucket.
func (s *Service) Move(requests []MoveRequest, actor, source string) error {
	if len(requests) == 0 {
		return nil
	}

	// Bucket labels are client input; reject before touching anything
	for _, req := range requests {
		if !validBucket(req.From) {
			return fmt.Errorf("sku %s bucket %s: %w", req.SKUCode, req.From, ErrUnknownBucket)
		}
		if !validBucket(req.To) {
			return fmt.Errorf("sku %s bucket %s: %w", req.SKUCode, req.To, ErrUnknownBucket)
		}
		if req.From == req.To {
			return fmt.Errorf("sku %s: %w", req.SKUCode, ErrSameBucket)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, req := range requests {
			record, err := lockRecord(tx, req.StoreID, req.SKUCode)
			if err != nil {
				return err
			}

			fromBefore := record.BucketQuantity(req.From)
			toBefore := record.BucketQuantity(req.To)

			if err := applyTransfer(record, req.From, req.To, req.Qty); err != nil {
				return err
			}

			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("failed to update record for sku %s: %w", req.SKUCode, err)
			}

			now := time.Now()
			entries := []*InventoryMovementLogEntry{
				{
					StoreID:      req.StoreID,
					SKUCode:      req.SKUCode,
					Source:       source,
					Delta:        -Round3(req.Qty),
					FromQuantity: fromBefore,
					ToQuantity:   record.BucketQuantity(req.From),
					Bucket:       req.From,
					MovementType: MovementTypeMovement,
					Remarks:      fmt.Sprintf("%s-%s", req.From, req.To),
					Actor:        actor,
					CreatedAt:    now,
				},
				{
					StoreID:      req.StoreID,
					SKUCode:      req.SKUCode,
					Source:       source,
					Delta:        Round3(req.Qty),
					FromQuantity: toBefore,
					ToQuantity:   record.BucketQuantity(req.To),
					Bucket:       req.To,
					MovementType: MovementTypeMovement,
					Remarks:      fmt.Sprintf("%s-%s", req.To, req.From),
					Actor:        actor,
					CreatedAt:    now,
				},
			}
			if err := s.audit.Append(tx, entries...); err != nil {
				return fmt.Errorf("failed to write movement log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("count", len(requests)).WithField("source", source).
		Info("Bucket transfers committed")
	return nil
}

// Receive atomically increments target buckets for a batch of records and
// writes one RECEIVE log row per record. Used for warehouse receiving
// (bucket=SALE) and manual hold-bucket adjustments (bucket=HOLD).
func (s *Service) Receive(requests []ReceiveRequest, actor, source string) error {
	if len(requests) == 0 {
		return nil
	}

	for _, req := range requests {
		if !validBucket(req.Bucket) {
			return fmt.Errorf("sku %s bucket %s: %w", req.SKUCode, req.Bucket, ErrUnknownBucket)
		}
	}

	movementType := MovementTypeReceive
	if source == SourceGRN {
		movementType = MovementTypeGRN
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, req := range requests {
			record, err := lockRecord(tx, req.StoreID, req.SKUCode)
			if err != nil {
				return err
			}

			before := record.BucketQuantity(req.Bucket)
			record.SetBucketQuantity(req.Bucket, Round3(before+req.Qty))

			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("failed to update record for sku %s: %w", req.SKUCode, err)
			}

			entry := &InventoryMovementLogEntry{
				StoreID:      req.StoreID,
				SKUCode:      req.SKUCode,
				Source:       source,
				Delta:        Round3(req.Qty),
				FromQuantity: before,
				ToQuantity:   record.BucketQuantity(req.Bucket),
				Bucket:       req.Bucket,
				MovementType: movementType,
				Remarks:      req.Remarks,
				Actor:        actor,
				CreatedAt:    time.Now(),
			}
			if err := s.audit.Append(tx, entry); err != nil {
				return fmt.Errorf("failed to write receive log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("count", len(requests)).WithField("source", source).
		Info("Stock receipt committed")
	return nil
}

// lockRecord loads the (store, SKU) row under a row-level write lock so that
// concurrent batch mutations against the same row serialize.
func lockRecord(tx *gorm.DB, storeID uint, skuCode string) (*InventoryRecord, error) {
	var record InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND sku_code = ?", storeID, skuCode).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sku %s not found in store %d: %w", skuCode, storeID, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to load record for sku %s: %w", skuCode, err)
	}
	return &record, nil
}
