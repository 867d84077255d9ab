// internal/domain/inventory/movement_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransfer(t *testing.T) {
	t.Run("quantity is conserved across buckets", func(t *testing.T) {
		record := &InventoryRecord{
			SKUCode:           "SKU-1",
			AvailableQuantity: 80,
			HoldQuantity:      15,
			DumpQuantity:      5,
		}
		sumBefore := record.AvailableQuantity + record.HoldQuantity + record.DumpQuantity

		require.NoError(t, applyTransfer(record, BucketSale, BucketHold, 30))

		assert.Equal(t, 50.0, record.AvailableQuantity)
		assert.Equal(t, 45.0, record.HoldQuantity)
		assert.Equal(t, 5.0, record.DumpQuantity)
		assert.Equal(t, sumBefore,
			record.AvailableQuantity+record.HoldQuantity+record.DumpQuantity)
	})

	t.Run("hold to dump", func(t *testing.T) {
		record := &InventoryRecord{HoldQuantity: 10}
		require.NoError(t, applyTransfer(record, BucketHold, BucketDump, 4))
		assert.Equal(t, 6.0, record.HoldQuantity)
		assert.Equal(t, 4.0, record.DumpQuantity)
	})

	t.Run("unknown source bucket rejected before mutation", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 10, HoldQuantity: 2}
		err := applyTransfer(record, Bucket("FROZEN"), BucketSale, 5)
		assert.ErrorIs(t, err, ErrUnknownBucket)
		assert.Equal(t, 10.0, record.AvailableQuantity)
		assert.Equal(t, 2.0, record.HoldQuantity)
	})

	t.Run("unknown target bucket rejected before mutation", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 10}
		err := applyTransfer(record, BucketSale, Bucket(""), 5)
		assert.ErrorIs(t, err, ErrUnknownBucket)
		assert.Equal(t, 10.0, record.AvailableQuantity)
	})

	t.Run("same bucket rejected before mutation", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 10}
		err := applyTransfer(record, BucketSale, BucketSale, 5)
		assert.ErrorIs(t, err, ErrSameBucket)
		assert.Equal(t, 10.0, record.AvailableQuantity)
	})

	t.Run("overdraw of source bucket rejected", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 3, HoldQuantity: 1}
		err := applyTransfer(record, BucketSale, BucketHold, 3.001)
		assert.ErrorIs(t, err, ErrInsufficientBucket)
		assert.Equal(t, 3.0, record.AvailableQuantity)
		assert.Equal(t, 1.0, record.HoldQuantity)
	})

	t.Run("exact drain of source bucket allowed", func(t *testing.T) {
		record := &InventoryRecord{AvailableQuantity: 3}
		require.NoError(t, applyTransfer(record, BucketSale, BucketDump, 3))
		assert.Equal(t, 0.0, record.AvailableQuantity)
		assert.Equal(t, 3.0, record.DumpQuantity)
	})
}

func TestValidBucket(t *testing.T) {
	assert.True(t, validBucket(BucketSale))
	assert.True(t, validBucket(BucketHold))
	assert.True(t, validBucket(BucketDump))
	assert.False(t, validBucket(Bucket("FROZEN")))
	assert.False(t, validBucket(Bucket("")))
	assert.False(t, validBucket(Bucket("sale")))
}
