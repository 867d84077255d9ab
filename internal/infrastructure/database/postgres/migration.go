// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/retail-inventory-backend/internal/domain/catalog"
	"github.com/your-org/retail-inventory-backend/internal/domain/discount"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
	"github.com/your-org/retail-inventory-backend/internal/domain/shopper"
	"github.com/your-org/retail-inventory-backend/internal/pkg/params"
	"github.com/your-org/retail-inventory-backend/internal/pkg/warehousesync"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// Ops users (for the admin API)
		&OpsUser{},

		// Catalog domain
		&catalog.Product{},

		// Inventory domain
		&inventory.InventoryRecord{},
		&inventory.InventoryMovementLogEntry{},

		// Discount domain
		&discount.Program{},
		&discount.SkuDiscount{},

		// Shopper domain
		&shopper.Shopper{},
		&shopper.Address{},
		&shopper.AudienceMembership{},

		// Infrastructure tables
		&params.Parameter{},
		&warehousesync.SyncOutboxEntry{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes that auto-migration does not cover
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Audit queries are always (store, sku, newest first)
		`CREATE INDEX IF NOT EXISTS idx_movement_logs_store_sku_created
			ON inventory_movement_logs (store_id, sku_code, created_at DESC)`,
		// Program lookup is (kind, active) with scope filtering in memory
		`CREATE INDEX IF NOT EXISTS idx_programs_kind_active
			ON discount_programs (kind, is_active)`,
		// Flush scans pending outbox rows oldest first
		`CREATE INDEX IF NOT EXISTS idx_outbox_status_created
			ON warehouse_sync_outbox (status, created_at)`,
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created")
	return nil
}

// OpsUser is an operator account for the admin API
type OpsUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OpsUser) TableName() string { return "ops_users" }

// SeedInitialData seeds development data
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	// Admin ops user
	var adminCount int64
	m.db.Model(&OpsUser{}).Where("is_admin = ?", true).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &OpsUser{
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			IsAdmin:      true,
			IsActive:     true,
		}
		if err := m.db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}

	// Default tunables
	defaults := []params.Parameter{
		{Key: params.KeyCartCutoffTime, Value: "23:00"},
		{Key: params.KeyFallbackOrderThreshold, Value: "3"},
	}
	for _, p := range defaults {
		var count int64
		m.db.Model(&params.Parameter{}).Where("key = ?", p.Key).Count(&count)
		if count == 0 {
			if err := m.db.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to seed parameter %s: %w", p.Key, err)
			}
		}
	}

	log.Println("✅ Initial data seeded")
	return nil
}

// GetTableInfo logs row counts for the main tables (development only)
func (m *Migration) GetTableInfo() {
	tables := []string{
		"products",
		"inventory_records",
		"inventory_movement_logs",
		"discount_programs",
		"discount_program_skus",
		"shoppers",
		"parameters",
		"warehouse_sync_outbox",
	}

	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		log.Printf("📊 Table %s: %d rows", table, count)
	}
}
