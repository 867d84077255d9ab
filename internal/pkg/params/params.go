// internal/pkg/params/params.go
package params

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-inventory-backend/internal/pkg/cache"
	"gorm.io/gorm"
)

// Well-known parameter keys
const (
	KeyCartCutoffTime         = "pricing.cart_cutoff_time"
	KeyFallbackOrderThreshold = "pricing.fallback_order_threshold"
)

// ErrNotFound is returned by Get when no row exists for the key
var ErrNotFound = errors.New("parameter not found")

// Parameter is one tunable threshold row
type Parameter struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"not null;size:255" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Parameter) TableName() string { return "parameters" }

// Store supplies tunable thresholds with caller-supplied defaults when a key
// is absent. Lookups go through the injected cache.
type Store struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

// NewStore creates a parameter store
func NewStore(db *gorm.DB, c cache.Cache, ttl time.Duration, log *logrus.Logger) *Store {
	return &Store{db: db, cache: c, ttl: ttl, log: log}
}

func (s *Store) cacheKey(key string) string {
	return "params:" + key
}

// Get returns the stored value for key, distinguishing an empty stored value
// from a missing row. Absent keys return ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var cached string
	if err := s.cache.Get(ctx, s.cacheKey(key), &cached); err == nil {
		return cached, nil
	}

	var param Parameter
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&param).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("parameter %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("failed to load parameter %s: %w", key, err)
	}

	if err := s.cache.Set(ctx, s.cacheKey(key), param.Value, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Debug("Parameter cache write failed")
	}
	return param.Value, nil
}

// GetString returns the raw value or the default when the key is absent
func (s *Store) GetString(ctx context.Context, key, defaultValue string) string {
	value, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).WithField("key", key).Warn("Parameter lookup failed, using default")
		}
		return defaultValue
	}
	return value
}

// GetInt returns the value parsed as int, or the default
func (s *Store) GetInt(ctx context.Context, key string, defaultValue int) int {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		s.log.WithField("key", key).WithField("value", raw).Warn("Parameter is not an int, using default")
		return defaultValue
	}
	return value
}

// GetFloat returns the value parsed as float64, or the default
func (s *Store) GetFloat(ctx context.Context, key string, defaultValue float64) float64 {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.log.WithField("key", key).WithField("value", raw).Warn("Parameter is not a float, using default")
		return defaultValue
	}
	return value
}

// Set upserts a parameter and drops its cache entry
func (s *Store) Set(ctx context.Context, key, value string) error {
	param := Parameter{Key: key, Value: value}
	if err := s.db.WithContext(ctx).Save(&param).Error; err != nil {
		return fmt.Errorf("failed to set parameter %s: %w", key, err)
	}
	if err := s.cache.Delete(ctx, s.cacheKey(key)); err != nil {
		s.log.WithError(err).WithField("key", key).Debug("Parameter cache invalidation failed")
	}
	return nil
}
