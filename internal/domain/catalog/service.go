// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no product exists for a SKU
var ErrProductNotFound = errors.New("product not found")

// Service exposes catalog metadata. The inventory core treats it as read-only;
// the discount engine writes procurement/display overrides through it.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// GetBySKU loads one product
func (s *Service) GetBySKU(skuCode string) (*Product, error) {
	var product Product
	err := s.db.Where("sku_code = ?", skuCode).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sku %s: %w", skuCode, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}

// GetBySKUs loads products keyed by SKU code. Missing SKUs are simply absent
// from the result.
func (s *Service) GetBySKUs(skuCodes []string) (map[string]*Product, error) {
	var products []Product
	if err := s.db.Where("sku_code IN ?", skuCodes).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byCode := make(map[string]*Product, len(products))
	for i := range products {
		byCode[products[i].SKUCode] = &products[i]
	}
	return byCode, nil
}

// BufferQuantities supplies the per-product safety floor for the deduction
// engine. SKUs without a product row get a zero buffer.
func (s *Service) BufferQuantities(skuCodes []string) (map[string]float64, error) {
	products, err := s.GetBySKUs(skuCodes)
	if err != nil {
		return nil, err
	}

	buffers := make(map[string]float64, len(skuCodes))
	for _, sku := range skuCodes {
		if p, ok := products[sku]; ok {
			buffers[sku] = p.BufferQuantity
		}
	}
	return buffers, nil
}

// ProductOverride carries the side effects a winning flat discount applies to
// the product as a unit.
type ProductOverride struct {
	DisplayQty           *float64
	ProcurementTag       string
	ProcurementTagExpiry *time.Time
	MaxOrderQuantity     *float64
}

// ApplyOverride writes flat-discount side effects onto the product. The
// procurement tag only propagates when it is non-empty and carries an expiry.
func (s *Service) ApplyOverride(skuCode string, override ProductOverride) error {
	updates := map[string]interface{}{}

	if override.DisplayQty != nil {
		updates["display_qty"] = *override.DisplayQty
	}
	if override.ProcurementTag != "" && override.ProcurementTagExpiry != nil {
		updates["procurement_tag"] = override.ProcurementTag
		updates["procurement_tag_expiry"] = *override.ProcurementTagExpiry
	}
	if override.MaxOrderQuantity != nil {
		updates["max_order_quantity"] = *override.MaxOrderQuantity
	}

	if len(updates) == 0 {
		return nil
	}

	result := s.db.Model(&Product{}).Where("sku_code = ?", skuCode).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to apply product override for sku %s: %w", skuCode, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sku %s: %w", skuCode, ErrProductNotFound)
	}

	s.log.WithField("sku_code", skuCode).Debug("Product override applied")
	return nil
}
