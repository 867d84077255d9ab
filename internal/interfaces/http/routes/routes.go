// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"github.com/your-org/retail-inventory-backend/internal/domain/discount"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
	"github.com/your-org/retail-inventory-backend/internal/domain/shopper"
	"github.com/your-org/retail-inventory-backend/internal/interfaces/http/handlers"
	"github.com/your-org/retail-inventory-backend/internal/interfaces/http/middleware"
	"github.com/your-org/retail-inventory-backend/internal/pkg/params"
	"github.com/your-org/retail-inventory-backend/internal/pkg/warehousesync"
	"gorm.io/gorm"
)

// Dependencies carries the wired services the route handlers need
type Dependencies struct {
	DB        *gorm.DB
	Config    *config.Config
	Inventory *inventory.Service
	Discount  *discount.Service
	Shoppers  *shopper.Service
	Params    *params.Store
	Warehouse *warehousesync.Client
}

// SetupRoutes registers all API routes
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config)
	inventoryHandler := handlers.NewInventoryHandler(deps.Inventory, deps.Config)
	pricingHandler := handlers.NewPricingHandler(deps.Discount, deps.Shoppers, deps.Config)
	opsHandler := handlers.NewOpsHandler(deps.Discount, deps.Warehouse, deps.Params, deps.Config)

	setupAuthRoutes(rg, authHandler, deps.Config)
	setupStoreRoutes(rg, inventoryHandler, pricingHandler, deps.Config)
	setupAdminRoutes(rg, inventoryHandler, pricingHandler, opsHandler, deps.Config)
}

// setupAuthRoutes sets up operator authentication routes
func setupAuthRoutes(rg *gin.RouterGroup, authHandler *handlers.AuthHandler, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}

// setupStoreRoutes sets up the store-facing read and purchase paths. These are
// called by the storefront backend, so they authenticate but do not require
// admin privileges.
func setupStoreRoutes(rg *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler, pricingHandler *handlers.PricingHandler, cfg *config.Config) {
	inv := rg.Group("/inventory")
	inv.Use(middleware.AuthMiddleware(cfg))
	{
		inv.GET("/:storeId", inventoryHandler.GetStoreRecords)
		inv.GET("/:storeId/:skuCode", inventoryHandler.GetRecord)
		inv.POST("/:storeId/deduct", inventoryHandler.VerifyAndDeduct)
	}

	pricing := rg.Group("/pricing")
	pricing.Use(middleware.AuthMiddleware(cfg))
	{
		pricing.GET("/:storeId/:skuCode", pricingHandler.ResolvePrice)
	}
}

// setupAdminRoutes sets up the ops-console routes behind admin auth
func setupAdminRoutes(rg *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler, pricingHandler *handlers.PricingHandler, opsHandler *handlers.OpsHandler, cfg *config.Config) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		// Inventory ledger management
		inv := admin.Group("/inventory")
		{
			inv.POST("", inventoryHandler.CreateRecord)
			inv.PUT("/stock", inventoryHandler.UpdateStock)
			inv.PUT("/stock/bulk", inventoryHandler.BulkUpdateStock)
			inv.POST("/move", inventoryHandler.Move)
			inv.POST("/receive", inventoryHandler.Receive)
			inv.POST("/:storeId/reset", inventoryHandler.ResetQuantities)
			inv.PATCH("/:storeId/:skuCode", inventoryHandler.PatchRecord)
			inv.DELETE("/:storeId/:skuCode", inventoryHandler.Deactivate)
			inv.GET("/:storeId/:skuCode/movements", inventoryHandler.GetMovementLog)
		}

		// Discount program management
		discounts := admin.Group("/discounts")
		{
			discounts.POST("/programs", pricingHandler.UploadProgram)
			discounts.DELETE("/programs/:id", pricingHandler.DeactivateProgram)
		}

		// Scheduled price refresh
		pricing := admin.Group("/pricing")
		{
			pricing.POST("/:storeId/refresh", pricingHandler.RefreshPrices)
		}

		// Operational endpoints
		ops := admin.Group("/ops")
		{
			ops.POST("/caches/invalidate", opsHandler.InvalidateCaches)
			ops.POST("/warehouse/flush", opsHandler.FlushOutbox)
			ops.PUT("/parameters", opsHandler.SetParameter)
			ops.GET("/parameters/:key", opsHandler.GetParameter)
		}
	}
}
