// internal/interfaces/http/handlers/ops.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"github.com/your-org/retail-inventory-backend/internal/domain/discount"
	"github.com/your-org/retail-inventory-backend/internal/pkg/params"
	"github.com/your-org/retail-inventory-backend/internal/pkg/warehousesync"
)

// OpsHandler handles operational endpoints: cache invalidation, warehouse
// outbox flushing and runtime parameters. All of these sit behind admin auth
// and are driven by external schedulers rather than shoppers.
type OpsHandler struct {
	discountService *discount.Service
	warehouseClient *warehousesync.Client
	paramStore      *params.Store
	config          *config.Config
}

// NewOpsHandler creates a new ops handler
func NewOpsHandler(discountService *discount.Service, warehouseClient *warehousesync.Client, paramStore *params.Store, cfg *config.Config) *OpsHandler {
	return &OpsHandler{
		discountService: discountService,
		warehouseClient: warehouseClient,
		paramStore:      paramStore,
		config:          cfg,
	}
}

// InvalidateCaches handles POST /admin/ops/caches/invalidate
func (h *OpsHandler) InvalidateCaches(c *gin.Context) {
	if err := h.discountService.InvalidateCaches(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to invalidate caches",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Caches invalidated successfully",
	})
}

// FlushOutbox handles POST /admin/ops/warehouse/flush
func (h *OpsHandler) FlushOutbox(c *gin.Context) {
	synced, failed, err := h.warehouseClient.Flush(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to flush warehouse outbox",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse outbox flushed",
		"synced":  synced,
		"failed":  failed,
	})
}

// SetParameterRequest updates one runtime tunable
type SetParameterRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// SetParameter handles PUT /admin/ops/parameters
func (h *OpsHandler) SetParameter(c *gin.Context) {
	var req SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.paramStore.Set(c.Request.Context(), req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update parameter",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Parameter updated successfully",
		"key":     req.Key,
	})
}

// GetParameter handles GET /admin/ops/parameters/:key. An empty stored value
// is a valid value; only a missing key is a 404.
func (h *OpsHandler) GetParameter(c *gin.Context) {
	key := c.Param("key")
	value, err := h.paramStore.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, params.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Parameter not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load parameter",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":   key,
		"value": value,
	})
}
