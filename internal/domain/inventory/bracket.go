// internal/domain/inventory/bracket.go
package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BracketUnboundedMinimum is the default floor for the last bracket's upper
// bound. The top tier must be effectively unbounded.
const BracketUnboundedMinimum = 50000

var (
	ErrBracketEmpty         = errors.New("price bracket list is empty")
	ErrBracketFirstMin      = errors.New("first bracket must start at 0")
	ErrBracketGap           = errors.New("brackets must be contiguous")
	ErrBracketBounds        = errors.New("bracket max must not be below its min")
	ErrBracketUnbounded     = errors.New("last bracket must be effectively unbounded")
	ErrBracketOverlap       = errors.New("brackets must not overlap")
	ErrBracketMalformedSpec = errors.New("malformed bracket specification")
)

// ValidateBrackets verifies a tiered pricing schedule: sorted by min, the first
// tier starts at 0, every tier's min equals the previous tier's max, max >= min
// for every tier, and the last tier's max exceeds unboundedMin. Any violation
// invalidates the whole list. The input slice is not modified. A zero or
// negative unboundedMin falls back to BracketUnboundedMinimum.
func ValidateBrackets(brackets []PriceBracket, unboundedMin float64) error {
	if unboundedMin <= 0 {
		unboundedMin = BracketUnboundedMinimum
	}
	if len(brackets) == 0 {
		return ErrBracketEmpty
	}

	sorted := make([]PriceBracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i := range sorted {
		sorted[i].Min = Round2(sorted[i].Min)
		sorted[i].Max = Round2(sorted[i].Max)
	}

	if sorted[0].Min != 0 {
		return fmt.Errorf("bracket starts at %.2f: %w", sorted[0].Min, ErrBracketFirstMin)
	}

	for i, b := range sorted {
		if b.Max < b.Min {
			return fmt.Errorf("bracket %.2f-%.2f: %w", b.Min, b.Max, ErrBracketBounds)
		}
		if i > 0 && b.Min != sorted[i-1].Max {
			return fmt.Errorf("bracket %.2f does not continue from %.2f: %w",
				b.Min, sorted[i-1].Max, ErrBracketGap)
		}
	}

	if sorted[len(sorted)-1].Max <= unboundedMin {
		return fmt.Errorf("last bracket ends at %.2f: %w", sorted[len(sorted)-1].Max, ErrBracketUnbounded)
	}

	return nil
}

// ParseBracketSpec parses the textual bracket form
// "min-max:salePrice:discountPercent,..." into a bracket list and validates it
// against unboundedMin, additionally rejecting pairwise overlap between any two
// brackets.
func ParseBracketSpec(spec string, unboundedMin float64) ([]PriceBracket, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrBracketEmpty
	}

	var brackets []PriceBracket
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%q: %w", part, ErrBracketMalformedSpec)
		}

		bounds := strings.Split(fields[0], "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("%q: %w", fields[0], ErrBracketMalformedSpec)
		}

		min, err := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", bounds[0], ErrBracketMalformedSpec)
		}
		max, err := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", bounds[1], ErrBracketMalformedSpec)
		}
		salePrice, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", fields[1], ErrBracketMalformedSpec)
		}
		discountPercent, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", fields[2], ErrBracketMalformedSpec)
		}

		brackets = append(brackets, PriceBracket{
			Min:             Round2(min),
			Max:             Round2(max),
			SalePrice:       salePrice,
			DiscountPercent: discountPercent,
		})
	}

	if err := ValidateBrackets(brackets, unboundedMin); err != nil {
		return nil, err
	}

	// Contiguity should already preclude overlap; checked anyway because the
	// textual form reaches this code from bulk uploads.
	for i := 0; i < len(brackets); i++ {
		for j := i + 1; j < len(brackets); j++ {
			if brackets[i].Min < brackets[j].Max && brackets[j].Min < brackets[i].Max {
				return nil, fmt.Errorf("brackets %.2f-%.2f and %.2f-%.2f: %w",
					brackets[i].Min, brackets[i].Max, brackets[j].Min, brackets[j].Max, ErrBracketOverlap)
			}
		}
	}

	return brackets, nil
}
