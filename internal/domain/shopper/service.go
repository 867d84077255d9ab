// internal/domain/shopper/service.go
package shopper

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-inventory-backend/internal/domain/discount"
	"gorm.io/gorm"
)

// ErrShopperNotFound is returned when no shopper matches the external id
var ErrShopperNotFound = errors.New("shopper not found")

// Service resolves a shopper's society and audience memberships for the
// pricing pipeline. Best-effort from the caller's perspective: an anonymous or
// unknown shopper resolves to an empty context upstream.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new shopper service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// ResolveContext builds the discount.Shopper for a user. The society comes
// from the explicit override when given, otherwise from the shopper's default
// address.
func (s *Service) ResolveContext(externalID, societyOverride string) (discount.Shopper, error) {
	ctx := discount.Shopper{UserID: externalID, SocietyID: societyOverride}
	if externalID == "" {
		return ctx, nil
	}

	var shopper Shopper
	err := s.db.Preload("Addresses").Preload("Memberships").
		Where("external_id = ?", externalID).First(&shopper).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx, fmt.Errorf("shopper %s: %w", externalID, ErrShopperNotFound)
		}
		return ctx, fmt.Errorf("failed to load shopper: %w", err)
	}

	ctx.LifetimeOrderCount = shopper.LifetimeOrderCount

	if ctx.SocietyID == "" {
		for _, addr := range shopper.Addresses {
			if addr.IsDefault && addr.SocietyID != "" {
				ctx.SocietyID = addr.SocietyID
				break
			}
		}
	}

	for _, m := range shopper.Memberships {
		ctx.Audiences = append(ctx.Audiences, m.AudienceID)
	}

	return ctx, nil
}

// RecordOrder bumps the lifetime order count after a successful deduction
func (s *Service) RecordOrder(externalID string) error {
	if externalID == "" {
		return nil
	}
	result := s.db.Model(&Shopper{}).
		Where("external_id = ?", externalID).
		UpdateColumn("lifetime_order_count", gorm.Expr("lifetime_order_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to record order for shopper %s: %w", externalID, result.Error)
	}
	return nil
}
