// internal/domain/inventory/deduction.go
package inventory

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Deduction error codes, surfaced per SKU so bulk callers can retry the failed
// subset.
const (
	DeductionErrNotFoundInStore = "INVENTORY_NOT_FOUND_IN_STORE"
	DeductionErrBelowBuffer     = "BELOW_BUFFER_QUANTITY"
)

// SourceVerifyAndDeduct labels audit rows written by the deduction engine
const SourceVerifyAndDeduct = "Verify and Deduct"

// DeductionRequest asks for one SKU's stock to be decremented
type DeductionRequest struct {
	SKUCode  string  `json:"sku_code" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// DeductionError is a structured per-SKU conflict
type DeductionError struct {
	SKUCode     string   `json:"sku_code"`
	Code        string   `json:"code"`
	MaxQuantity *float64 `json:"max_quantity,omitempty"`
}

// DeductionResult is the batch outcome. Errors is empty iff Success.
type DeductionResult struct {
	Success bool             `json:"success"`
	Errors  []DeductionError `json:"errors,omitempty"`
}

// BufferProvider supplies the per-product safety floor from the catalog.
// Read-only from this engine's perspective.
type BufferProvider interface {
	BufferQuantities(skuCodes []string) (map[string]float64, error)
}

// PurchaseNotifier receives (user, sku, quantity) tuples after a successful
// deduction. Fire-and-forget: its failure must not fail the deduction.
type PurchaseNotifier interface {
	NotifyPurchases(userID string, requests []DeductionRequest) error
}

// planDeduction validates the whole batch against loaded records and buffer
// floors without mutating anything. It returns the new available quantity per
// SKU and every conflict found. Duplicate lines for one SKU draw down a
// running balance, so the plan reflects their sum. All arithmetic is fixed to
// 3 decimal places.
func planDeduction(records map[string]*InventoryRecord, buffers map[string]float64, requests []DeductionRequest) (map[string]float64, []DeductionError) {
	updates := make(map[string]float64, len(requests))
	var errs []DeductionError

	for _, req := range requests {
		record, ok := records[req.SKUCode]
		if !ok {
			errs = append(errs, DeductionError{SKUCode: req.SKUCode, Code: DeductionErrNotFoundInStore})
			continue
		}

		available := record.AvailableQuantity
		if planned, ok := updates[req.SKUCode]; ok {
			available = planned
		}

		buffer := Round3(buffers[req.SKUCode])
		updated := Round3(available - req.Quantity)
		if updated < buffer {
			max := Round3(available - buffer)
			errs = append(errs, DeductionError{
				SKUCode:     req.SKUCode,
				Code:        DeductionErrBelowBuffer,
				MaxQuantity: &max,
			})
			continue
		}

		updates[req.SKUCode] = updated
	}

	return updates, errs
}

// VerifyAndDeduct decrements available stock for a batch of SKUs in one store.
// The batch is all-or-nothing: any missing SKU or any deduction that would
// drive available stock below the product's buffer quantity rejects the whole
// batch with per-SKU errors and no mutation.
func (s *Service) VerifyAndDeduct(storeID uint, userID string, requests []DeductionRequest) (*DeductionResult, error) {
	if len(requests) == 0 {
		return &DeductionResult{Success: true}, nil
	}

	skuCodes := make([]string, 0, len(requests))
	for _, req := range requests {
		skuCodes = append(skuCodes, req.SKUCode)
	}

	buffers, err := s.buffers.BufferQuantities(skuCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer quantities: %w", err)
	}

	var result DeductionResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var rows []InventoryRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("store_id = ? AND sku_code IN ?", storeID, skuCodes).
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load records for store %d: %w", storeID, err)
		}

		records := make(map[string]*InventoryRecord, len(rows))
		for i := range rows {
			records[rows[i].SKUCode] = &rows[i]
		}

		_, deductionErrs := planDeduction(records, buffers, requests)
		if len(deductionErrs) > 0 {
			result = DeductionResult{Success: false, Errors: deductionErrs}
			return nil // no mutation; the rejection is the result, not a tx error
		}

		for _, req := range requests {
			record := records[req.SKUCode]
			before := record.AvailableQuantity
			// Applied per line so duplicate SKU lines each decrement and each
			// audit row reports its own before/after window. CommittedTotal is
			// untouched: the deducted quantity moves into the externally-held
			// difference until the next declared total.
			record.AvailableQuantity = Round3(before - req.Quantity)

			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("failed to deduct sku %s: %w", req.SKUCode, err)
			}

			entry := &InventoryMovementLogEntry{
				StoreID:      storeID,
				SKUCode:      req.SKUCode,
				Source:       SourceVerifyAndDeduct,
				Delta:        -Round3(req.Quantity),
				FromQuantity: before,
				ToQuantity:   record.AvailableQuantity,
				Bucket:       BucketSale,
				MovementType: MovementTypeDeduction,
				Actor:        userID,
				CreatedAt:    time.Now(),
			}
			if err := s.audit.Append(tx, entry); err != nil {
				return fmt.Errorf("failed to write deduction log: %w", err)
			}
		}

		result = DeductionResult{Success: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success && s.notifier != nil {
		// Fire-and-forget; a recommendation failure never fails the deduction
		go func(userID string, requests []DeductionRequest) {
			if err := s.notifier.NotifyPurchases(userID, requests); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"store_id": storeID,
					"user_id":  userID,
				}).Warn("Failed to notify recommendation service of purchases")
			}
		}(userID, requests)
	}

	return &result, nil
}
