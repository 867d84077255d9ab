// internal/domain/inventory/deduction_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deductionFixtures() map[string]*InventoryRecord {
	return map[string]*InventoryRecord{
		"APPLE":  {SKUCode: "APPLE", AvailableQuantity: 10},
		"BANANA": {SKUCode: "BANANA", AvailableQuantity: 2.5},
	}
}

func TestPlanDeduction(t *testing.T) {
	t.Run("all lines pass", func(t *testing.T) {
		updates, errs := planDeduction(deductionFixtures(), map[string]float64{}, []DeductionRequest{
			{SKUCode: "APPLE", Quantity: 4},
			{SKUCode: "BANANA", Quantity: 1.5},
		})
		require.Empty(t, errs)
		assert.Equal(t, 6.0, updates["APPLE"])
		assert.Equal(t, 1.0, updates["BANANA"])
	})

	t.Run("unknown sku fails the line", func(t *testing.T) {
		updates, errs := planDeduction(deductionFixtures(), map[string]float64{}, []DeductionRequest{
			{SKUCode: "MANGO", Quantity: 1},
			{SKUCode: "APPLE", Quantity: 1},
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "MANGO", errs[0].SKUCode)
		assert.Equal(t, DeductionErrNotFoundInStore, errs[0].Code)
		assert.Nil(t, errs[0].MaxQuantity)

		// The passing line still plans; the caller decides all-or-nothing
		assert.Equal(t, 9.0, updates["APPLE"])
	})

	t.Run("buffer floor rejects with the purchasable maximum", func(t *testing.T) {
		buffers := map[string]float64{"APPLE": 8}
		_, errs := planDeduction(deductionFixtures(), buffers, []DeductionRequest{
			{SKUCode: "APPLE", Quantity: 3},
		})
		require.Len(t, errs, 1)
		assert.Equal(t, DeductionErrBelowBuffer, errs[0].Code)
		require.NotNil(t, errs[0].MaxQuantity)
		assert.Equal(t, 2.0, *errs[0].MaxQuantity)
	})

	t.Run("deduction down to exactly the buffer passes", func(t *testing.T) {
		buffers := map[string]float64{"APPLE": 8}
		updates, errs := planDeduction(deductionFixtures(), buffers, []DeductionRequest{
			{SKUCode: "APPLE", Quantity: 2},
		})
		require.Empty(t, errs)
		assert.Equal(t, 8.0, updates["APPLE"])
	})

	t.Run("missing buffer entry means a zero floor", func(t *testing.T) {
		updates, errs := planDeduction(deductionFixtures(), map[string]float64{}, []DeductionRequest{
			{SKUCode: "BANANA", Quantity: 2.5},
		})
		require.Empty(t, errs)
		assert.Equal(t, 0.0, updates["BANANA"])
	})

	t.Run("duplicate sku lines draw down a running balance", func(t *testing.T) {
		updates, errs := planDeduction(deductionFixtures(), map[string]float64{}, []DeductionRequest{
			{SKUCode: "APPLE", Quantity: 3},
			{SKUCode: "APPLE", Quantity: 4},
		})
		require.Empty(t, errs)
		assert.Equal(t, 3.0, updates["APPLE"])
	})

	t.Run("duplicate sku lines hit the buffer on the running balance", func(t *testing.T) {
		buffers := map[string]float64{"APPLE": 5}
		updates, errs := planDeduction(deductionFixtures(), buffers, []DeductionRequest{
			{SKUCode: "APPLE", Quantity: 3},
			{SKUCode: "APPLE", Quantity: 3},
		})
		require.Len(t, errs, 1)
		assert.Equal(t, DeductionErrBelowBuffer, errs[0].Code)
		require.NotNil(t, errs[0].MaxQuantity)
		// 7 left after the first line, 5 is the floor
		assert.Equal(t, 2.0, *errs[0].MaxQuantity)
		assert.Equal(t, 7.0, updates["APPLE"])
	})

	t.Run("fractional arithmetic stays at three decimals", func(t *testing.T) {
		records := map[string]*InventoryRecord{
			"RICE": {SKUCode: "RICE", AvailableQuantity: 1.1},
		}
		updates, errs := planDeduction(records, map[string]float64{}, []DeductionRequest{
			{SKUCode: "RICE", Quantity: 0.3},
		})
		require.Empty(t, errs)
		assert.Equal(t, 0.8, updates["RICE"])
	})
}
