// internal/domain/discount/resolution_test.go
package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
)

func fptr(v float64) *float64 { return &v }

// testEngine pins the clock mid-afternoon so the previous day's cutoff applies
func testEngine() *Engine {
	e := NewEngine("23:00", 3)
	e.now = func() time.Time {
		return time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)
	}
	return e
}

func futureDelivery() time.Time {
	return time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
}

func testRecord() *inventory.InventoryRecord {
	return &inventory.InventoryRecord{
		SKUCode:     "APPLE",
		SalePrice:   100,
		MarketPrice: 120,
	}
}

func societyProgram(scopeID string, entries ...SkuDiscount) Program {
	return Program{
		Kind:              KindSociety,
		ScopeID:           scopeID,
		ValidDeliveryDate: futureDelivery(),
		IsActive:          true,
		SkuDiscounts:      entries,
	}
}

func audienceProgram(scopeID string, entries ...SkuDiscount) Program {
	return Program{
		Kind:              KindAudience,
		ScopeID:           scopeID,
		ValidDeliveryDate: futureDelivery(),
		IsActive:          true,
		SkuDiscounts:      entries,
	}
}

func TestResolveMarketingOverride(t *testing.T) {
	record := testRecord()
	record.MarketingPrice = fptr(42)

	programs := []Program{societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 50})}

	res := testEngine().Resolve(record, Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}, programs, nil)
	assert.Equal(t, 42.0, res.SalePrice)
	assert.False(t, res.IsFlatDiscountApplied)
}

func TestResolveSocietyPercentage(t *testing.T) {
	programs := []Program{societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 10, DiscountType: TypePercentage})}
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, programs, nil)
	assert.Equal(t, 90.0, res.SalePrice)
	assert.Equal(t, 108.0, res.MarketPrice)
	assert.False(t, res.IsFlatDiscountApplied)
}

func TestResolveAudienceFlatBeatsSocietyPercentage(t *testing.T) {
	society := []Program{societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 10, DiscountType: TypePercentage})}
	audience := []Program{audienceProgram("AUD-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 70, DiscountType: TypeFlat})}
	shopper := Shopper{SocietyID: "SOC-1", Audiences: []string{"AUD-1"}, LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, society, audience)
	assert.Equal(t, 70.0, res.SalePrice)
	assert.True(t, res.IsFlatDiscountApplied)
}

func TestResolveFlatOnlyWhenStrictlyLower(t *testing.T) {
	// A flat price equal to the running candidate does not displace it
	programs := []Program{societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 100, DiscountType: TypeFlat})}
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, programs, nil)
	assert.Equal(t, 100.0, res.SalePrice)
	assert.False(t, res.IsFlatDiscountApplied)
}

func TestResolveGlobalFallbackForNewShoppers(t *testing.T) {
	programs := []Program{
		societyProgram(SocietyGlobal, SkuDiscount{SKUCode: "APPLE", Discount: 20}),
		societyProgram("SOC-1", SkuDiscount{SKUCode: "APPLE", Discount: 5}),
	}

	t.Run("below the threshold the global program applies", func(t *testing.T) {
		shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 2}
		res := testEngine().Resolve(testRecord(), shopper, programs, nil)
		assert.Equal(t, 80.0, res.SalePrice)
	})

	t.Run("at the threshold the shopper's society applies", func(t *testing.T) {
		shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 3}
		res := testEngine().Resolve(testRecord(), shopper, programs, nil)
		assert.Equal(t, 95.0, res.SalePrice)
	})
}

func TestResolveDefaultDiscountWhenNoEntry(t *testing.T) {
	program := societyProgram("SOC-1")
	program.DefaultDiscountPercent = fptr(25)
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, []Program{program}, nil)
	assert.Equal(t, 75.0, res.SalePrice)
	assert.Equal(t, 90.0, res.MarketPrice)
}

func TestResolveMaximumPriceMode(t *testing.T) {
	program := societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 85, IsMaximumPrice: true})
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	t.Run("max price caps without touching the sale price", func(t *testing.T) {
		record := testRecord()
		res := testEngine().Resolve(record, shopper, []Program{program}, nil)

		assert.True(t, res.IsMaximumPrice)
		require.NotNil(t, res.MaxPrice)
		assert.Equal(t, 85.0, *res.MaxPrice)
		assert.Equal(t, 100.0, res.SalePrice)

		// The cap is recorded on the row for persistence
		require.NotNil(t, record.MaxPrice)
		assert.Equal(t, 85.0, *record.MaxPrice)
	})

	t.Run("a cap from an earlier resolution is dropped when a discount wins", func(t *testing.T) {
		record := testRecord()
		record.MaxPrice = fptr(85)
		flat := []Program{societyProgram("SOC-1",
			SkuDiscount{SKUCode: "APPLE", Discount: 70, DiscountType: TypeFlat})}

		res := testEngine().Resolve(record, shopper, flat, nil)
		assert.Equal(t, 70.0, res.SalePrice)
		assert.True(t, res.IsFlatDiscountApplied)
		assert.Nil(t, res.MaxPrice)
		assert.Nil(t, record.MaxPrice)
	})

	t.Run("a cap from an earlier resolution is dropped when no program applies", func(t *testing.T) {
		record := testRecord()
		record.MaxPrice = fptr(85)

		res := testEngine().Resolve(record, shopper, nil, nil)
		assert.Equal(t, 100.0, res.SalePrice)
		assert.False(t, res.IsMaximumPrice)
		assert.Nil(t, record.MaxPrice)
	})

	t.Run("a cheaper audience price clears the cap", func(t *testing.T) {
		record := testRecord()
		audience := []Program{audienceProgram("AUD-1",
			SkuDiscount{SKUCode: "APPLE", Discount: 60, DiscountType: TypeFlat})}
		withAudience := Shopper{SocietyID: "SOC-1", Audiences: []string{"AUD-1"}, LifetimeOrderCount: 10}

		res := testEngine().Resolve(record, withAudience, []Program{program}, audience)
		assert.Equal(t, 60.0, res.SalePrice)
		assert.False(t, res.IsMaximumPrice)
		assert.Nil(t, res.MaxPrice)
		assert.Nil(t, record.MaxPrice)
	})
}

func TestResolveReplacement(t *testing.T) {
	programs := []Program{societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 10, ReplaceWithSKUCode: "APPLE-PREMIUM"})}
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, programs, nil)
	assert.Equal(t, "APPLE-PREMIUM", res.ReplaceWithSKUCode)
	// Replacement short-circuits the price math
	assert.Equal(t, 100.0, res.SalePrice)
}

func TestResolveExpiredProgramIgnored(t *testing.T) {
	program := societyProgram("SOC-1", SkuDiscount{SKUCode: "APPLE", Discount: 50})
	// Delivery on the cutoff day itself has lapsed
	program.ValidDeliveryDate = time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, []Program{program}, nil)
	assert.Equal(t, 100.0, res.SalePrice)
}

func TestResolveFlatSideEffects(t *testing.T) {
	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	programs := []Program{societyProgram("SOC-1", SkuDiscount{
		SKUCode:              "APPLE",
		Discount:             70,
		DiscountType:         TypeFlat,
		DisplayQty:           fptr(5),
		MaxQuantity:          fptr(10),
		ProcurementTag:       "FRESH",
		ProcurementTagExpiry: &expiry,
	})}
	shopper := Shopper{SocietyID: "SOC-1", LifetimeOrderCount: 10}

	res := testEngine().Resolve(testRecord(), shopper, programs, nil)
	require.True(t, res.IsFlatDiscountApplied)
	require.NotNil(t, res.SideEffects)
	assert.Equal(t, 5.0, *res.SideEffects.DisplayQty)
	assert.Equal(t, 10.0, *res.SideEffects.MaxOrderQuantity)
	assert.Equal(t, "FRESH", res.SideEffects.ProcurementTag)

	t.Run("tag without expiry does not propagate", func(t *testing.T) {
		untagged := []Program{societyProgram("SOC-1", SkuDiscount{
			SKUCode:        "APPLE",
			Discount:       70,
			DiscountType:   TypeFlat,
			ProcurementTag: "FRESH",
		})}
		res := testEngine().Resolve(testRecord(), shopper, untagged, nil)
		require.True(t, res.IsFlatDiscountApplied)
		if res.SideEffects != nil {
			assert.Empty(t, res.SideEffects.ProcurementTag)
		}
	})
}

func TestResolveIsDeterministic(t *testing.T) {
	society := []Program{societyProgram("SOC-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 10, DiscountType: TypePercentage})}
	audience := []Program{audienceProgram("AUD-1",
		SkuDiscount{SKUCode: "APPLE", Discount: 15, DiscountType: TypePercentage})}
	shopper := Shopper{SocietyID: "SOC-1", Audiences: []string{"AUD-1"}, LifetimeOrderCount: 10}

	engine := testEngine()
	record := testRecord()
	first := engine.Resolve(record, shopper, society, audience)
	second := engine.Resolve(record, shopper, society, audience)
	assert.Equal(t, first, second)
	assert.Equal(t, 85.0, first.SalePrice)
}
