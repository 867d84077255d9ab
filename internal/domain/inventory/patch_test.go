// internal/domain/inventory/patch_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestRecordPatchApply(t *testing.T) {
	base := func() *InventoryRecord {
		return &InventoryRecord{
			SKUCode:           "SKU-1",
			AvailableQuantity: 40,
			CommittedTotal:    100,
			MarketPrice:       120,
			SalePrice:         100,
			ResetQuantity:     100,
			IsActive:          true,
		}
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		record := base()
		(&RecordPatch{}).Apply(record)
		assert.Equal(t, base(), record)
	})

	t.Run("present fields merge, absent fields stay", func(t *testing.T) {
		record := base()
		patch := &RecordPatch{
			SalePrice:     ptr(90.0),
			ResetQuantity: ptr(75.0),
			IsActive:      ptr(false),
		}
		patch.Apply(record)

		assert.Equal(t, 90.0, record.SalePrice)
		assert.Equal(t, 75.0, record.ResetQuantity)
		assert.False(t, record.IsActive)
		// Untouched attributes keep their values
		assert.Equal(t, 120.0, record.MarketPrice)
		assert.Equal(t, 40.0, record.AvailableQuantity)
		assert.Equal(t, 100.0, record.CommittedTotal)
	})

	t.Run("marketing price set and cleared", func(t *testing.T) {
		record := base()
		(&RecordPatch{MarketingPrice: ptr(55.0)}).Apply(record)
		assert.NotNil(t, record.MarketingPrice)
		assert.Equal(t, 55.0, *record.MarketingPrice)

		(&RecordPatch{ClearMarketing: true}).Apply(record)
		assert.Nil(t, record.MarketingPrice)
	})

	t.Run("bracket list replaced wholesale", func(t *testing.T) {
		record := base()
		record.PriceBrackets = validBrackets()

		replacement := []PriceBracket{{Min: 0, Max: 60000, SalePrice: 99, DiscountPercent: 1}}
		(&RecordPatch{PriceBrackets: &replacement}).Apply(record)
		assert.Equal(t, replacement, record.PriceBrackets)

		// An explicitly empty list clears the schedule
		empty := []PriceBracket{}
		(&RecordPatch{PriceBrackets: &empty}).Apply(record)
		assert.Empty(t, record.PriceBrackets)
	})
}
