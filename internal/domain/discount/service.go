// internal/domain/discount/service.go
package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"github.com/your-org/retail-inventory-backend/internal/domain/catalog"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
	"github.com/your-org/retail-inventory-backend/internal/pkg/cache"
	"github.com/your-org/retail-inventory-backend/internal/pkg/params"
	"gorm.io/gorm"
)

// Bulk-upload row error codes
const (
	RowErrMissingSKU          = "MISSING_SKU"
	RowErrInvalidDiscount     = "INVALID_DISCOUNT"
	RowErrInvalidDiscountType = "INVALID_DISCOUNT_TYPE"
)

// ErrProgramNotFound is returned when no active program matches
var ErrProgramNotFound = errors.New("discount program not found")

// RecordSource supplies inventory rows to the resolution pipeline
type RecordSource interface {
	GetRecord(storeID uint, skuCode string) (*inventory.InventoryRecord, error)
	GetStoreRecords(storeID uint) ([]inventory.InventoryRecord, error)
}

// CatalogSource supplies product metadata and accepts flat-discount overrides
type CatalogSource interface {
	GetBySKU(skuCode string) (*catalog.Product, error)
	ApplyOverride(skuCode string, override catalog.ProductOverride) error
}

// Service manages discount programs and runs price resolution
type Service struct {
	db      *gorm.DB
	config  *config.Config
	log     *logrus.Logger
	cache   cache.Cache
	params  *params.Store
	records RecordSource
	catalog CatalogSource
}

// NewService creates a new discount service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, c cache.Cache, p *params.Store, records RecordSource, catalogSource CatalogSource) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		log:     log,
		cache:   c,
		params:  p,
		records: records,
		catalog: catalogSource,
	}
}

// SkuDiscountRow is one uploaded per-SKU entry
type SkuDiscountRow struct {
	SKUCode              string     `json:"sku_code"`
	Discount             float64    `json:"discount"`
	DiscountType         Type       `json:"discount_type,omitempty"`
	ReplaceWithSKUCode   string     `json:"replace_with_sku_code,omitempty"`
	ProcurementTag       string     `json:"procurement_tag,omitempty"`
	ProcurementTagExpiry *time.Time `json:"procurement_tag_expiry,omitempty"`
	MaxQuantity          *float64   `json:"max_quantity,omitempty"`
	DisplayQty           *float64   `json:"display_qty,omitempty"`
}

// RowError is a structured per-row upload failure
type RowError struct {
	SKUCode string `json:"sku_code"`
	Code    string `json:"code"`
}

// UploadRequest creates (or supersedes) one program from parsed upload rows
type UploadRequest struct {
	Kind                   Kind             `json:"kind" binding:"required"`
	ScopeID                string           `json:"scope_id" binding:"required"`
	Name                   string           `json:"name"`
	ValidDeliveryDate      time.Time        `json:"valid_delivery_date" binding:"required"`
	DefaultDiscountPercent *float64         `json:"default_discount_percent,omitempty"`
	IsMaximumPrice         bool             `json:"is_maximum_price"`
	Rows                   []SkuDiscountRow `json:"rows"`
}

// UploadResult reports per-row validation failures; the program is only
// written when every row passes.
type UploadResult struct {
	Success   bool       `json:"success"`
	ProgramID uint       `json:"program_id,omitempty"`
	Errors    []RowError `json:"errors,omitempty"`
}

// validateRows checks every uploaded row, collecting structured errors so the
// caller can retry only the failed subset
func validateRows(rows []SkuDiscountRow) []RowError {
	var errs []RowError
	for _, row := range rows {
		if row.SKUCode == "" {
			errs = append(errs, RowError{SKUCode: row.SKUCode, Code: RowErrMissingSKU})
			continue
		}
		switch row.DiscountType {
		case TypePercentage, "":
			if row.Discount < 0 || row.Discount > 100 {
				errs = append(errs, RowError{SKUCode: row.SKUCode, Code: RowErrInvalidDiscount})
			}
		case TypeFlat:
			if row.Discount < 0 {
				errs = append(errs, RowError{SKUCode: row.SKUCode, Code: RowErrInvalidDiscount})
			}
		default:
			errs = append(errs, RowError{SKUCode: row.SKUCode, Code: RowErrInvalidDiscountType})
		}
	}
	return errs
}

// Upload validates the rows and writes a new program version. Any active prior
// version for the same scope is deactivated in the same transaction: programs
// are superseded, never edited in place.
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if rowErrs := validateRows(req.Rows); len(rowErrs) > 0 {
		return &UploadResult{Success: false, Errors: rowErrs}, nil
	}

	program := &Program{
		Kind:                   req.Kind,
		ScopeID:                req.ScopeID,
		Name:                   req.Name,
		ValidDeliveryDate:      req.ValidDeliveryDate,
		DefaultDiscountPercent: req.DefaultDiscountPercent,
		IsMaximumPrice:         req.IsMaximumPrice,
		IsActive:               true,
	}
	for _, row := range req.Rows {
		program.SkuDiscounts = append(program.SkuDiscounts, SkuDiscount{
			SKUCode:              row.SKUCode,
			Discount:             row.Discount,
			DiscountType:         row.DiscountType,
			ReplaceWithSKUCode:   row.ReplaceWithSKUCode,
			ProcurementTag:       row.ProcurementTag,
			ProcurementTagExpiry: row.ProcurementTagExpiry,
			MaxQuantity:          row.MaxQuantity,
			DisplayQty:           row.DisplayQty,
			IsMaximumPrice:       req.IsMaximumPrice,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Program{}).
			Where("kind = ? AND scope_id = ? AND is_active = ?", req.Kind, req.ScopeID, true).
			Update("is_active", false).Error
		if err != nil {
			return fmt.Errorf("failed to deactivate prior program version: %w", err)
		}
		if err := tx.Create(program).Error; err != nil {
			return fmt.Errorf("failed to create program: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProgramCache(ctx, req.Kind)

	s.log.WithFields(logrus.Fields{
		"kind":     req.Kind,
		"scope_id": req.ScopeID,
		"rows":     len(req.Rows),
	}).Info("Discount program uploaded")

	return &UploadResult{Success: true, ProgramID: program.ID}, nil
}

// Deactivate soft-deletes a program
func (s *Service) Deactivate(ctx context.Context, programID uint) error {
	var program Program
	err := s.db.WithContext(ctx).First(&program, programID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("program %d: %w", programID, ErrProgramNotFound)
		}
		return fmt.Errorf("failed to load program: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&program).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate program: %w", err)
	}

	s.invalidateProgramCache(ctx, program.Kind)
	return nil
}

func programCacheKey(kind Kind) string {
	return fmt.Sprintf("discount:programs:%s", kind)
}

// activePrograms loads active programs of one kind, entries included, through
// the cache
func (s *Service) activePrograms(ctx context.Context, kind Kind) ([]Program, error) {
	var programs []Program
	if err := s.cache.Get(ctx, programCacheKey(kind), &programs); err == nil {
		return programs, nil
	}

	err := s.db.WithContext(ctx).Preload("SkuDiscounts").
		Where("kind = ? AND is_active = ?", kind, true).
		Find(&programs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s programs: %w", kind, err)
	}

	if err := s.cache.Set(ctx, programCacheKey(kind), programs, s.config.Pricing.ProgramCacheTTL); err != nil {
		s.log.WithError(err).Debug("Program cache write failed")
	}
	return programs, nil
}

func (s *Service) invalidateProgramCache(ctx context.Context, kind Kind) {
	if err := s.cache.Delete(ctx, programCacheKey(kind)); err != nil {
		s.log.WithError(err).Warn("Program cache invalidation failed")
	}
}

// InvalidateCaches drops all cached program lists. Exposed through the ops
// endpoint so multi-instance deployments can be invalidated externally.
func (s *Service) InvalidateCaches(ctx context.Context) error {
	return s.cache.Delete(ctx, programCacheKey(KindSociety), programCacheKey(KindAudience))
}

// newEngine builds a resolution engine from parameter-store thresholds,
// falling back to the configured defaults
func (s *Service) newEngine(ctx context.Context) *Engine {
	cutoff := s.params.GetString(ctx, params.KeyCartCutoffTime, s.config.Pricing.CartCutoffTime)
	threshold := s.params.GetInt(ctx, params.KeyFallbackOrderThreshold, s.config.Pricing.FallbackOrderThreshold)
	return NewEngine(cutoff, threshold)
}

// PricedLine is the record, its product and the resolved price for one SKU.
// When the replacement rule fires, Record and Product belong to the
// substituted SKU.
type PricedLine struct {
	Record     *inventory.InventoryRecord `json:"record"`
	Product    *catalog.Product           `json:"product,omitempty"`
	Resolution Resolution                 `json:"resolution"`
}

// ResolvePrice runs the full pipeline for one (store, SKU) and shopper,
// persists any max-price change on the record row, and applies flat-discount
// side effects to the product.
func (s *Service) ResolvePrice(ctx context.Context, storeID uint, skuCode string, shopper Shopper) (*PricedLine, error) {
	record, err := s.records.GetRecord(storeID, skuCode)
	if err != nil {
		return nil, err
	}

	societyPrograms, err := s.activePrograms(ctx, KindSociety)
	if err != nil {
		return nil, err
	}
	audiencePrograms, err := s.activePrograms(ctx, KindAudience)
	if err != nil {
		return nil, err
	}

	engine := s.newEngine(ctx)

	maxBefore := record.MaxPrice
	resolution := engine.Resolve(record, shopper, societyPrograms, audiencePrograms)

	// Replacement substitutes the whole line and skips the pipeline
	if resolution.ReplaceWithSKUCode != "" {
		replacement, err := s.records.GetRecord(storeID, resolution.ReplaceWithSKUCode)
		if err != nil {
			return nil, fmt.Errorf("replacement sku %s: %w", resolution.ReplaceWithSKUCode, err)
		}
		product, err := s.catalog.GetBySKU(resolution.ReplaceWithSKUCode)
		if err != nil {
			return nil, fmt.Errorf("replacement sku %s: %w", resolution.ReplaceWithSKUCode, err)
		}
		resolution.SalePrice = replacement.SalePrice
		resolution.MarketPrice = replacement.MarketPrice
		return &PricedLine{Record: replacement, Product: product, Resolution: resolution}, nil
	}

	if maxPriceChanged(maxBefore, record.MaxPrice) {
		err := s.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
			Where("id = ?", record.ID).
			Update("max_price", record.MaxPrice).Error
		if err != nil {
			return nil, fmt.Errorf("failed to persist max price for sku %s: %w", skuCode, err)
		}
	}

	product, err := s.catalog.GetBySKU(skuCode)
	if err != nil && !errors.Is(err, catalog.ErrProductNotFound) {
		return nil, err
	}

	if resolution.SideEffects != nil {
		override := catalog.ProductOverride{
			DisplayQty:           resolution.SideEffects.DisplayQty,
			ProcurementTag:       resolution.SideEffects.ProcurementTag,
			ProcurementTagExpiry: resolution.SideEffects.ProcurementTagExpiry,
			MaxOrderQuantity:     resolution.SideEffects.MaxOrderQuantity,
		}
		if err := s.catalog.ApplyOverride(skuCode, override); err != nil {
			s.log.WithError(err).WithField("sku_code", skuCode).
				Warn("Failed to apply flat-discount side effects")
		}
	}

	return &PricedLine{Record: record, Product: product, Resolution: resolution}, nil
}

// RefreshPrices re-resolves every active record in a store for a generic
// shopper context and persists sale/market prices. Triggered externally on a
// schedule; runs synchronously per store.
func (s *Service) RefreshPrices(ctx context.Context, storeID uint, shopper Shopper) (int, error) {
	records, err := s.records.GetStoreRecords(storeID)
	if err != nil {
		return 0, err
	}

	societyPrograms, err := s.activePrograms(ctx, KindSociety)
	if err != nil {
		return 0, err
	}
	audiencePrograms, err := s.activePrograms(ctx, KindAudience)
	if err != nil {
		return 0, err
	}

	engine := s.newEngine(ctx)

	count := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			record := &records[i]
			resolution := engine.Resolve(record, shopper, societyPrograms, audiencePrograms)
			if resolution.ReplaceWithSKUCode != "" {
				continue
			}

			updates := map[string]interface{}{
				"sale_price":   resolution.SalePrice,
				"market_price": resolution.MarketPrice,
				"max_price":    record.MaxPrice,
			}
			err := tx.Model(&inventory.InventoryRecord{}).
				Where("id = ?", record.ID).Updates(updates).Error
			if err != nil {
				return fmt.Errorf("failed to refresh price for sku %s: %w", record.SKUCode, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"store_id": storeID, "count": count}).
		Info("Price refresh applied")
	return count, nil
}

func maxPriceChanged(before, after *float64) bool {
	if before == nil && after == nil {
		return false
	}
	if before == nil || after == nil {
		return true
	}
	return *before != *after
}
