// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/retail-inventory-backend/internal/config"
	"github.com/your-org/retail-inventory-backend/internal/domain/catalog"
	"github.com/your-org/retail-inventory-backend/internal/domain/discount"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
	"github.com/your-org/retail-inventory-backend/internal/domain/shopper"
	"github.com/your-org/retail-inventory-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/retail-inventory-backend/internal/infrastructure/database/redis"
	"github.com/your-org/retail-inventory-backend/internal/interfaces/http"
	"github.com/your-org/retail-inventory-backend/internal/interfaces/http/routes"
	"github.com/your-org/retail-inventory-backend/internal/pkg/cache"
	"github.com/your-org/retail-inventory-backend/internal/pkg/logger"
	"github.com/your-org/retail-inventory-backend/internal/pkg/params"
	"github.com/your-org/retail-inventory-backend/internal/pkg/warehousesync"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLog := logger.New(cfg)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Health check
	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.Printf("Warning: Data seeding failed: %v", err)
		}
		migration.GetTableInfo()
	}

	// Wire the services
	gormDB := db.GetDB()
	redisCache := cache.NewRedis(redisClient.GetClient())
	paramStore := params.NewStore(gormDB, redisCache, cfg.Pricing.ParameterCacheTTL, appLog)
	catalogService := catalog.NewService(gormDB, appLog)
	warehouseClient := warehousesync.NewClient(gormDB, cfg, appLog)
	shopperService := shopper.NewService(gormDB, appLog)
	inventoryService := inventory.NewService(
		gormDB, cfg, appLog, catalogService, shopperNotifier{shopperService}, warehouseClient)
	discountService := discount.NewService(
		gormDB, cfg, appLog, redisCache, paramStore, inventoryService, catalogService)

	log.Println("✅ All systems operational!")

	// Create and start HTTP server
	deps := &routes.Dependencies{
		DB:        gormDB,
		Config:    cfg,
		Inventory: inventoryService,
		Discount:  discountService,
		Shoppers:  shopperService,
		Params:    paramStore,
		Warehouse: warehouseClient,
	}
	server := http.NewServer(cfg, gormDB, redisClient.GetClient(), deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}

// shopperNotifier bumps lifetime order counts after a successful deduction
type shopperNotifier struct {
	shoppers *shopper.Service
}

func (n shopperNotifier) NotifyPurchases(userID string, requests []inventory.DeductionRequest) error {
	return n.shoppers.RecordOrder(userID)
}
