// internal/domain/inventory/reservation.go
package inventory

import (
	"errors"
	"fmt"
)

// ErrBelowCommitted signals that a requested committed total is lower than the
// quantity already committed elsewhere. This is a client error and is never
// silently clamped.
var ErrBelowCommitted = errors.New("requested total is below the externally held quantity")

// ReserveToTotal reconciles a new committed-total request against the record
// without breaking the externally-held invariant:
//
//	committedTotal - availableQuantity
//
// must be identical before and after the call. It mutates the record only on
// success: availableQuantity and committedTotal are updated, and resetQuantity
// follows the new total when the total changed and no explicit reset quantity
// was supplied. No I/O happens here; every quantity-affecting write path calls
// this before persisting.
func ReserveToTotal(record *InventoryRecord, requestedTotal float64, explicitReset *float64) error {
	requestedTotal = Round3(requestedTotal)
	externallyHeld := record.ExternallyHeld()

	newAvailable := Round3(requestedTotal - externallyHeld)
	if newAvailable < 0 {
		return fmt.Errorf("sku %s: total %.3f with %.3f already held: %w",
			record.SKUCode, requestedTotal, externallyHeld, ErrBelowCommitted)
	}

	totalChanged := Round3(record.CommittedTotal) != requestedTotal

	record.AvailableQuantity = newAvailable
	record.CommittedTotal = requestedTotal

	if explicitReset != nil {
		record.ResetQuantity = Round3(*explicitReset)
	} else if totalChanged {
		record.ResetQuantity = requestedTotal
	}

	return nil
}
