// internal/domain/inventory/patch.go
package inventory

// RecordPatch is an explicit partial update: one optional field per mutable
// attribute. A nil field leaves the attribute untouched. Quantity fields are
// deliberately absent; quantity changes go through ReserveToTotal, Move,
// Receive or VerifyAndDeduct so the ledger invariants hold.
type RecordPatch struct {
	MarketPrice     *float64        `json:"market_price,omitempty"`
	SalePrice       *float64        `json:"sale_price,omitempty"`
	MarketingPrice  *float64        `json:"marketing_price,omitempty"`
	ClearMarketing  bool            `json:"clear_marketing,omitempty"`
	PriceBrackets   *[]PriceBracket `json:"price_brackets,omitempty"`
	ResetQuantity   *float64        `json:"reset_quantity,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
	IsComplimentary *bool           `json:"is_complimentary,omitempty"`
}

// Apply merges the present fields onto the record. Bracket lists must already
// be validated by the caller.
func (p *RecordPatch) Apply(record *InventoryRecord) {
	if p.MarketPrice != nil {
		record.MarketPrice = *p.MarketPrice
	}
	if p.SalePrice != nil {
		record.SalePrice = *p.SalePrice
	}
	if p.MarketingPrice != nil {
		record.MarketingPrice = p.MarketingPrice
	}
	if p.ClearMarketing {
		record.MarketingPrice = nil
	}
	if p.PriceBrackets != nil {
		record.PriceBrackets = *p.PriceBrackets
	}
	if p.ResetQuantity != nil {
		record.ResetQuantity = Round3(*p.ResetQuantity)
	}
	if p.IsActive != nil {
		record.IsActive = *p.IsActive
	}
	if p.IsComplimentary != nil {
		record.IsComplimentary = *p.IsComplimentary
	}
}
