// internal/pkg/params/params_test.go
package params

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-inventory-backend/internal/pkg/cache"
)

// memCache is an in-memory Cache for tests. Values are strings because the
// parameter store only ever caches strings.
type memCache struct {
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string]string)}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	value, ok := m.values[key]
	if !ok {
		return cache.ErrMiss
	}
	*dest.(*string) = value
	return nil
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memCache) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}

func testStore(c cache.Cache) *Store {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewStore(nil, c, time.Minute, log)
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("cached value is returned without a db roundtrip", func(t *testing.T) {
		c := newMemCache()
		c.values["params:pricing.cart_cutoff_time"] = "21:30"

		value, err := testStore(c).Get(ctx, "pricing.cart_cutoff_time")
		require.NoError(t, err)
		assert.Equal(t, "21:30", value)
	})

	t.Run("an empty stored value is found, not missing", func(t *testing.T) {
		c := newMemCache()
		c.values["params:features.banner_text"] = ""

		value, err := testStore(c).Get(ctx, "features.banner_text")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}

func TestGetString(t *testing.T) {
	ctx := context.Background()

	t.Run("an empty stored value beats the default", func(t *testing.T) {
		c := newMemCache()
		c.values["params:features.banner_text"] = ""

		value := testStore(c).GetString(ctx, "features.banner_text", "fallback")
		assert.Equal(t, "", value)
	})
}

func TestGetIntAndFloat(t *testing.T) {
	ctx := context.Background()

	t.Run("parses a cached int", func(t *testing.T) {
		c := newMemCache()
		c.values["params:pricing.fallback_order_threshold"] = "3"
		assert.Equal(t, 3, testStore(c).GetInt(ctx, "pricing.fallback_order_threshold", 7))
	})

	t.Run("unparseable value falls back to the default", func(t *testing.T) {
		c := newMemCache()
		c.values["params:pricing.fallback_order_threshold"] = "many"
		assert.Equal(t, 7, testStore(c).GetInt(ctx, "pricing.fallback_order_threshold", 7))
		assert.Equal(t, 2.5, testStore(c).GetFloat(ctx, "pricing.fallback_order_threshold", 2.5))
	})
}
