// internal/domain/inventory/reservation_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveToTotal(t *testing.T) {
	tests := []struct {
		name          string
		available     float64
		committed     float64
		requested     float64
		wantAvailable float64
		wantCommitted float64
	}{
		{
			name:          "fresh record takes the full total",
			available:     0,
			committed:     0,
			requested:     100,
			wantAvailable: 100,
			wantCommitted: 100,
		},
		{
			name:          "partially sold record keeps the held difference",
			available:     40,
			committed:     100,
			requested:     150,
			wantAvailable: 90,
			wantCommitted: 150,
		},
		{
			name:          "total equal to held quantity empties available",
			available:     40,
			committed:     100,
			requested:     60,
			wantAvailable: 0,
			wantCommitted: 60,
		},
		{
			name:          "fractional quantities settle at three decimals",
			available:     0.1,
			committed:     0.3,
			requested:     0.6,
			wantAvailable: 0.4,
			wantCommitted: 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &InventoryRecord{
				SKUCode:           "SKU-1",
				AvailableQuantity: tt.available,
				CommittedTotal:    tt.committed,
			}
			heldBefore := record.ExternallyHeld()

			err := ReserveToTotal(record, tt.requested, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAvailable, record.AvailableQuantity)
			assert.Equal(t, tt.wantCommitted, record.CommittedTotal)
			assert.Equal(t, heldBefore, record.ExternallyHeld(),
				"externally held quantity must survive the update")
		})
	}
}

func TestReserveToTotalBelowHeld(t *testing.T) {
	record := &InventoryRecord{
		SKUCode:           "SKU-1",
		AvailableQuantity: 40,
		CommittedTotal:    100,
		ResetQuantity:     100,
	}

	err := ReserveToTotal(record, 59, nil)
	require.ErrorIs(t, err, ErrBelowCommitted)

	// The record is untouched on rejection
	assert.Equal(t, 40.0, record.AvailableQuantity)
	assert.Equal(t, 100.0, record.CommittedTotal)
	assert.Equal(t, 100.0, record.ResetQuantity)
}

func TestReserveToTotalResetQuantity(t *testing.T) {
	t.Run("reset follows a changed total", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 10, CommittedTotal: 10, ResetQuantity: 10}
		require.NoError(t, ReserveToTotal(record, 25, nil))
		assert.Equal(t, 25.0, record.ResetQuantity)
	})

	t.Run("reset stays put for an unchanged total", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 10, CommittedTotal: 10, ResetQuantity: 50}
		require.NoError(t, ReserveToTotal(record, 10, nil))
		assert.Equal(t, 50.0, record.ResetQuantity)
	})

	t.Run("explicit reset wins over the follow rule", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 10, CommittedTotal: 10, ResetQuantity: 10}
		explicit := 99.0
		require.NoError(t, ReserveToTotal(record, 25, &explicit))
		assert.Equal(t, 99.0, record.ResetQuantity)
	})
}
