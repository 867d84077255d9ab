// internal/domain/discount/cutoff_test.go
package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartCutoff(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 20, hour, minute, 0, 0, time.UTC)
	}

	t.Run("before the cutoff the window opened yesterday", func(t *testing.T) {
		cutoff, err := CartCutoff(day(10, 0), "23:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC), cutoff)
	})

	t.Run("after the cutoff the window opened today", func(t *testing.T) {
		cutoff, err := CartCutoff(day(23, 30), "23:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), cutoff)
	})

	t.Run("exactly at the cutoff counts as before", func(t *testing.T) {
		cutoff, err := CartCutoff(day(23, 0), "23:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC), cutoff)
	})

	t.Run("malformed cutoff string errors", func(t *testing.T) {
		_, err := CartCutoff(day(10, 0), "25:99")
		assert.Error(t, err)
	})
}

func TestProgramValid(t *testing.T) {
	cutoff := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("delivery after the cutoff is valid", func(t *testing.T) {
		p := &Program{IsActive: true, ValidDeliveryDate: time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)}
		assert.True(t, programValid(p, cutoff))
	})

	t.Run("delivery on the cutoff day is expired", func(t *testing.T) {
		p := &Program{IsActive: true, ValidDeliveryDate: time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)}
		assert.False(t, programValid(p, cutoff))
	})

	t.Run("inactive program is never valid", func(t *testing.T) {
		p := &Program{IsActive: false, ValidDeliveryDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
		assert.False(t, programValid(p, cutoff))
	})
}
