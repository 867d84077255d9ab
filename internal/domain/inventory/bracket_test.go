// internal/domain/inventory/bracket_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBrackets() []PriceBracket {
	return []PriceBracket{
		{Min: 0, Max: 100, SalePrice: 95, DiscountPercent: 5},
		{Min: 100, Max: 500, SalePrice: 90, DiscountPercent: 10},
		{Min: 500, Max: 99999, SalePrice: 85, DiscountPercent: 15},
	}
}

func TestValidateBrackets(t *testing.T) {
	t.Run("valid schedule passes", func(t *testing.T) {
		assert.NoError(t, ValidateBrackets(validBrackets(), 0))
	})

	t.Run("order of input does not matter", func(t *testing.T) {
		brackets := validBrackets()
		brackets[0], brackets[2] = brackets[2], brackets[0]
		assert.NoError(t, ValidateBrackets(brackets, 0))
	})

	t.Run("empty list rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateBrackets(nil, 0), ErrBracketEmpty)
	})

	t.Run("first bracket must start at zero", func(t *testing.T) {
		brackets := validBrackets()
		brackets[0].Min = 1
		assert.ErrorIs(t, ValidateBrackets(brackets, 0), ErrBracketFirstMin)
	})

	t.Run("gap between tiers rejected", func(t *testing.T) {
		brackets := validBrackets()
		brackets[1].Min = 150
		assert.ErrorIs(t, ValidateBrackets(brackets, 0), ErrBracketGap)
	})

	t.Run("inverted bounds rejected", func(t *testing.T) {
		brackets := []PriceBracket{
			{Min: 0, Max: 100},
			{Min: 100, Max: 50},
		}
		assert.ErrorIs(t, ValidateBrackets(brackets, 0), ErrBracketBounds)
	})

	t.Run("bounded top tier rejected", func(t *testing.T) {
		brackets := []PriceBracket{
			{Min: 0, Max: 100},
			{Min: 100, Max: 50000},
		}
		assert.ErrorIs(t, ValidateBrackets(brackets, 0), ErrBracketUnbounded)
	})

	t.Run("configured floor overrides the default", func(t *testing.T) {
		brackets := []PriceBracket{
			{Min: 0, Max: 100},
			{Min: 100, Max: 1500},
		}
		assert.NoError(t, ValidateBrackets(brackets, 1000))
		assert.ErrorIs(t, ValidateBrackets(brackets, 1500), ErrBracketUnbounded)
		// The default applies when no floor is configured
		assert.ErrorIs(t, ValidateBrackets(brackets, 0), ErrBracketUnbounded)
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		brackets := validBrackets()
		brackets[0], brackets[2] = brackets[2], brackets[0]
		require.NoError(t, ValidateBrackets(brackets, 0))
		assert.Equal(t, 500.0, brackets[0].Min)
	})
}

func TestParseBracketSpec(t *testing.T) {
	t.Run("valid spec parses", func(t *testing.T) {
		brackets, err := ParseBracketSpec("0-100:95:5, 100-500:90:10, 500-99999:85:15", 0)
		require.NoError(t, err)
		require.Len(t, brackets, 3)
		assert.Equal(t, PriceBracket{Min: 0, Max: 100, SalePrice: 95, DiscountPercent: 5}, brackets[0])
		assert.Equal(t, 99999.0, brackets[2].Max)
	})

	t.Run("empty spec rejected", func(t *testing.T) {
		_, err := ParseBracketSpec("  ", 0)
		assert.ErrorIs(t, err, ErrBracketEmpty)
	})

	t.Run("missing field rejected", func(t *testing.T) {
		_, err := ParseBracketSpec("0-100:95", 0)
		assert.ErrorIs(t, err, ErrBracketMalformedSpec)
	})

	t.Run("non-numeric bound rejected", func(t *testing.T) {
		_, err := ParseBracketSpec("0-abc:95:5", 0)
		assert.ErrorIs(t, err, ErrBracketMalformedSpec)
	})

	t.Run("parsed schedule still validated", func(t *testing.T) {
		_, err := ParseBracketSpec("5-100:95:5, 100-99999:90:10", 0)
		assert.ErrorIs(t, err, ErrBracketFirstMin)
	})
}
