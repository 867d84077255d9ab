// internal/domain/discount/resolution.go
package discount

import (
	"time"

	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
)

// Shopper is the pricing context for one customer
type Shopper struct {
	UserID             string   `json:"user_id,omitempty"`
	SocietyID          string   `json:"society_id,omitempty"`
	Audiences          []string `json:"audiences,omitempty"`
	LifetimeOrderCount int      `json:"lifetime_order_count"`
}

// SideEffects are the record/product-level overrides carried by a winning flat
// discount entry.
type SideEffects struct {
	DisplayQty           *float64   `json:"display_qty,omitempty"`
	ProcurementTag       string     `json:"procurement_tag,omitempty"`
	ProcurementTagExpiry *time.Time `json:"procurement_tag_expiry,omitempty"`
	MaxOrderQuantity     *float64   `json:"max_order_quantity,omitempty"`
}

// Resolution is the authoritative pricing outcome for one record and shopper.
// It is consumed by display logic downstream, not by this engine.
type Resolution struct {
	SalePrice             float64      `json:"sale_price"`
	MarketPrice           float64      `json:"market_price"`
	IsFlatDiscountApplied bool         `json:"is_flat_discount_applied"`
	IsMaximumPrice        bool         `json:"is_maximum_price"`
	MaxPrice              *float64     `json:"max_price,omitempty"`
	ReplaceWithSKUCode    string       `json:"replace_with_sku_code,omitempty"`
	SideEffects           *SideEffects `json:"side_effects,omitempty"`
}

// Engine merges society, audience and marketing-override pricing into one sale
// price with fixed precedence. Resolution is deterministic for unchanged
// inputs.
type Engine struct {
	cutoffTime             string
	fallbackOrderThreshold int
	now                    func() time.Time
}

// NewEngine creates a resolution engine. cutoffTime is "HH:MM" local time;
// fallbackOrderThreshold gates the global society fallback program.
func NewEngine(cutoffTime string, fallbackOrderThreshold int) *Engine {
	return &Engine{
		cutoffTime:             cutoffTime,
		fallbackOrderThreshold: fallbackOrderThreshold,
		now:                    time.Now,
	}
}

// percentageCandidate prices a PERCENTAGE (or untyped) entry
func percentageCandidate(price, percent float64) float64 {
	return inventory.Round2(price - inventory.Round2(price*percent/100))
}

// flatCandidate prices a FLAT entry: the discount value is the target price
func flatCandidate(discount float64) float64 {
	return discount
}

// tierOutcome is one tier's resolved candidate
type tierOutcome struct {
	salePrice   float64
	marketPrice float64
	flatEntry   *SkuDiscount // winning flat entry, nil when percentage/default won
	matched     bool
}

// resolveTier computes the minimum candidate price across one program's
// entries for the SKU, falling back to the program default when no entry
// matches. A FLAT candidate only displaces the running candidate when it is
// strictly lower.
func resolveTier(program *Program, skuCode string, baseSale, baseMarket float64) tierOutcome {
	outcome := tierOutcome{salePrice: baseSale, marketPrice: baseMarket}

	entries := program.EntriesFor(skuCode)
	if len(entries) == 0 {
		if program.DefaultDiscountPercent != nil {
			outcome.salePrice = percentageCandidate(baseSale, *program.DefaultDiscountPercent)
			outcome.marketPrice = percentageCandidate(baseMarket, *program.DefaultDiscountPercent)
			outcome.matched = true
		}
		return outcome
	}

	for i := range entries {
		entry := &entries[i]
		switch entry.DiscountType {
		case TypeFlat:
			candidate := flatCandidate(entry.Discount)
			if candidate < outcome.salePrice {
				outcome.salePrice = candidate
				outcome.marketPrice = baseMarket
				outcome.flatEntry = entry
				outcome.matched = true
			}
		default: // PERCENTAGE or untyped
			candidate := percentageCandidate(baseSale, entry.Discount)
			if candidate < outcome.salePrice {
				outcome.salePrice = candidate
				outcome.marketPrice = percentageCandidate(baseMarket, entry.Discount)
				outcome.flatEntry = nil
				outcome.matched = true
			}
		}
	}

	return outcome
}

// selectSocietyProgram picks the single applicable society program: the global
// fallback when the shopper's lifetime order count is below the threshold and
// the fallback is still valid, otherwise the program scoped to the shopper's
// actual society.
func (e *Engine) selectSocietyProgram(programs []Program, shopper Shopper, cutoff time.Time) *Program {
	var societyProgram *Program
	for i := range programs {
		p := &programs[i]
		if p.Kind != KindSociety || !programValid(p, cutoff) {
			continue
		}
		if p.ScopeID == SocietyGlobal {
			if shopper.LifetimeOrderCount < e.fallbackOrderThreshold {
				return p
			}
			continue
		}
		if shopper.SocietyID != "" && p.ScopeID == shopper.SocietyID && societyProgram == nil {
			societyProgram = p
		}
	}
	return societyProgram
}

// Resolve computes the final price for one record. Precedence: marketing
// override, then society tier, then audience tier. It mutates record.MaxPrice
// when a maximum-price program applies (and clears it when a cheaper audience
// program wins); nothing else on the record changes.
func (e *Engine) Resolve(record *inventory.InventoryRecord, shopper Shopper, societyPrograms, audiencePrograms []Program) Resolution {
	resolution := Resolution{
		SalePrice:   record.SalePrice,
		MarketPrice: record.MarketPrice,
	}

	// 1. Marketing override wins outright
	if record.MarketingPrice != nil {
		resolution.SalePrice = *record.MarketingPrice
		return resolution
	}

	cutoff, err := CartCutoff(e.now(), e.cutoffTime)
	if err != nil {
		// Misconfigured cutoff makes every program inert
		return resolution
	}

	// Replacement rule short-circuits the whole pipeline
	if sku := e.replacementFor(record.SKUCode, shopper, societyPrograms, audiencePrograms, cutoff); sku != "" {
		resolution.ReplaceWithSKUCode = sku
		return resolution
	}

	// 2. Society tier
	societySale := record.SalePrice
	societyMarket := record.MarketPrice
	var societyFlat *SkuDiscount

	if program := e.selectSocietyProgram(societyPrograms, shopper, cutoff); program != nil {
		if entry := maximumPriceEntry(program, record.SKUCode); entry != nil {
			maxPrice := entry.Discount
			record.MaxPrice = &maxPrice
			resolution.MaxPrice = &maxPrice
			resolution.IsMaximumPrice = true
		} else {
			outcome := resolveTier(program, record.SKUCode, record.SalePrice, record.MarketPrice)
			societySale = outcome.salePrice
			societyMarket = outcome.marketPrice
			societyFlat = outcome.flatEntry
		}
	}

	finalSale := societySale
	finalMarket := societyMarket
	winningFlat := societyFlat

	// 3. Audience tier: minimum across all matching audience programs
	for i := range audiencePrograms {
		p := &audiencePrograms[i]
		if p.Kind != KindAudience || !programValid(p, cutoff) {
			continue
		}
		if !shopperInAudience(shopper, p.ScopeID) {
			continue
		}

		outcome := resolveTier(p, record.SKUCode, record.SalePrice, record.MarketPrice)
		if !outcome.matched {
			continue
		}
		if outcome.salePrice < finalSale {
			finalSale = outcome.salePrice
			finalMarket = outcome.marketPrice
			winningFlat = outcome.flatEntry

			// Audience result wins: clear any maximum-price state
			if resolution.IsMaximumPrice {
				resolution.IsMaximumPrice = false
				resolution.MaxPrice = nil
				record.MaxPrice = nil
			}
		}
	}

	resolution.SalePrice = finalSale
	resolution.MarketPrice = finalMarket

	// The cap stands only while a maximum-price program is the winning
	// outcome; any other outcome drops it, a cap left by an earlier
	// resolution included.
	if !resolution.IsMaximumPrice {
		record.MaxPrice = nil
		resolution.MaxPrice = nil
	}

	// 4. Winning flat entry carries side effects
	if winningFlat != nil {
		resolution.IsFlatDiscountApplied = true
		effects := &SideEffects{
			DisplayQty:       winningFlat.DisplayQty,
			MaxOrderQuantity: winningFlat.MaxQuantity,
		}
		// The procurement tag only propagates with an expiry
		if winningFlat.ProcurementTag != "" && winningFlat.ProcurementTagExpiry != nil {
			effects.ProcurementTag = winningFlat.ProcurementTag
			effects.ProcurementTagExpiry = winningFlat.ProcurementTagExpiry
		}
		if effects.DisplayQty != nil || effects.MaxOrderQuantity != nil || effects.ProcurementTag != "" {
			resolution.SideEffects = effects
		}
	}

	return resolution
}

// replacementFor finds a replaceWithSkuCode declaration in any applicable
// program entry for the SKU. The substituted SKU replaces the line wholesale.
func (e *Engine) replacementFor(skuCode string, shopper Shopper, societyPrograms, audiencePrograms []Program, cutoff time.Time) string {
	if program := e.selectSocietyProgram(societyPrograms, shopper, cutoff); program != nil {
		for _, entry := range program.EntriesFor(skuCode) {
			if entry.ReplaceWithSKUCode != "" {
				return entry.ReplaceWithSKUCode
			}
		}
	}
	for i := range audiencePrograms {
		p := &audiencePrograms[i]
		if p.Kind != KindAudience || !programValid(p, cutoff) || !shopperInAudience(shopper, p.ScopeID) {
			continue
		}
		for _, entry := range p.EntriesFor(skuCode) {
			if entry.ReplaceWithSKUCode != "" {
				return entry.ReplaceWithSKUCode
			}
		}
	}
	return ""
}

// maximumPriceEntry returns the program's maximum-price entry for the SKU, if
// any. The flag may sit on the entry or be inherited from the program.
func maximumPriceEntry(program *Program, skuCode string) *SkuDiscount {
	entries := program.EntriesFor(skuCode)
	for i := range entries {
		if entries[i].IsMaximumPrice || program.IsMaximumPrice {
			return &entries[i]
		}
	}
	return nil
}

func shopperInAudience(shopper Shopper, audienceID string) bool {
	for _, a := range shopper.Audiences {
		if a == audienceID {
			return true
		}
	}
	return false
}
