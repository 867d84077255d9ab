// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
)

// InventoryHandler handles inventory ledger endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc *inventory.Service, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: svc,
		config:           cfg,
	}
}

// actorFromContext returns the authenticated operator's email for audit rows
func actorFromContext(c *gin.Context) string {
	if email, exists := c.Get("user_email"); exists {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return "system"
}

func parseStoreID(c *gin.Context) (uint, bool) {
	storeID, err := strconv.ParseUint(c.Param("storeId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid store ID",
		})
		return 0, false
	}
	return uint(storeID), true
}

// inventoryStatus maps domain errors onto HTTP status codes
func inventoryStatus(err error) int {
	switch {
	case errors.Is(err, inventory.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrAlreadyPresent):
		return http.StatusConflict
	case errors.Is(err, inventory.ErrBelowCommitted),
		errors.Is(err, inventory.ErrSameBucket),
		errors.Is(err, inventory.ErrUnknownBucket),
		errors.Is(err, inventory.ErrInsufficientBucket),
		errors.Is(err, inventory.ErrBracketEmpty),
		errors.Is(err, inventory.ErrBracketFirstMin),
		errors.Is(err, inventory.ErrBracketGap),
		errors.Is(err, inventory.ErrBracketBounds),
		errors.Is(err, inventory.ErrBracketUnbounded),
		errors.Is(err, inventory.ErrBracketOverlap),
		errors.Is(err, inventory.ErrBracketMalformedSpec):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateRecord handles POST /admin/inventory
func (h *InventoryHandler) CreateRecord(c *gin.Context) {
	var req inventory.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.inventoryService.CreateRecord(&req, actorFromContext(c))
	if err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Inventory record created successfully",
		"data":    record,
	})
}

// GetRecord handles GET /inventory/:storeId/:skuCode
func (h *InventoryHandler) GetRecord(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	record, err := h.inventoryService.GetRecord(storeID, c.Param("skuCode"))
	if err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory record retrieved successfully",
		"data":    record,
	})
}

// GetStoreRecords handles GET /inventory/:storeId
func (h *InventoryHandler) GetStoreRecords(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	records, err := h.inventoryService.GetStoreRecords(storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve inventory records",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory records retrieved successfully",
		"data":    records,
		"count":   len(records),
	})
}

// UpdateStock handles PUT /admin/inventory/stock
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	var req inventory.StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.inventoryService.UpdateStock(&req, actorFromContext(c), inventory.SourceAdminUpdate)
	if err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock updated successfully",
		"data":    record,
	})
}

// BulkUpdateStockRequest wraps the batch for the bulk endpoint
type BulkUpdateStockRequest struct {
	Updates []inventory.StockUpdateRequest `json:"updates" binding:"required,min=1,dive"`
}

// BulkUpdateStock handles PUT /admin/inventory/stock/bulk
func (h *InventoryHandler) BulkUpdateStock(c *gin.Context) {
	var req BulkUpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.inventoryService.BulkUpdateStock(req.Updates, actorFromContext(c), inventory.SourceBulkUpdate); err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bulk stock update applied successfully",
		"count":   len(req.Updates),
	})
}

// MoveBatchRequest wraps a batch of bucket transfers
type MoveBatchRequest struct {
	Moves  []inventory.MoveRequest `json:"moves" binding:"required,min=1,dive"`
	Source string                  `json:"source,omitempty"`
}

// Move handles POST /admin/inventory/move
func (h *InventoryHandler) Move(c *gin.Context) {
	var req MoveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	source := req.Source
	if source == "" {
		source = inventory.SourceAdminUpdate
	}

	if err := h.inventoryService.Move(req.Moves, actorFromContext(c), source); err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bucket transfers applied successfully",
		"count":   len(req.Moves),
	})
}

// ReceiveBatchRequest wraps a batch of bucket increments
type ReceiveBatchRequest struct {
	Receipts []inventory.ReceiveRequest `json:"receipts" binding:"required,min=1,dive"`
	Source   string                     `json:"source,omitempty"`
}

// Receive handles POST /admin/inventory/receive
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	source := req.Source
	if source == "" {
		source = inventory.SourceGRN
	}

	if err := h.inventoryService.Receive(req.Receipts, actorFromContext(c), source); err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Receipts applied successfully",
		"count":   len(req.Receipts),
	})
}

// DeductBatchRequest is the purchase-time deduction call for one shopper
type DeductBatchRequest struct {
	UserID string                       `json:"user_id" binding:"required"`
	Items  []inventory.DeductionRequest `json:"items" binding:"required,min=1,dive"`
}

// VerifyAndDeduct handles POST /inventory/:storeId/deduct
func (h *InventoryHandler) VerifyAndDeduct(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var req DeductBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.inventoryService.VerifyAndDeduct(storeID, req.UserID, req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process deduction",
		})
		return
	}

	// Per-SKU failures come back in the body; the batch applied nothing
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// ResetQuantities handles POST /admin/inventory/:storeId/reset
func (h *InventoryHandler) ResetQuantities(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	count, err := h.inventoryService.ResetAvailableQuantities(storeID, actorFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reset quantities",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Available quantities reset successfully",
		"count":   count,
	})
}

// PatchRecord handles PATCH /admin/inventory/:storeId/:skuCode
func (h *InventoryHandler) PatchRecord(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var patch inventory.RecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.inventoryService.PatchRecord(storeID, c.Param("skuCode"), &patch, actorFromContext(c))
	if err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory record updated successfully",
		"data":    record,
	})
}

// Deactivate handles DELETE /admin/inventory/:storeId/:skuCode
func (h *InventoryHandler) Deactivate(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	if err := h.inventoryService.Deactivate(storeID, c.Param("skuCode"), actorFromContext(c)); err != nil {
		c.JSON(inventoryStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory record deactivated successfully",
	})
}

// GetMovementLog handles GET /admin/inventory/:storeId/:skuCode/movements
func (h *InventoryHandler) GetMovementLog(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	entries, err := h.inventoryService.GetMovementLog(storeID, c.Param("skuCode"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve movement log",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movement log retrieved successfully",
		"data":    entries,
		"count":   len(entries),
	})
}
