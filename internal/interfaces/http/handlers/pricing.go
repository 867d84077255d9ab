// internal/interfaces/http/handlers/pricing.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"github.com/your-org/retail-inventory-backend/internal/domain/discount"
	"github.com/your-org/retail-inventory-backend/internal/domain/inventory"
	"github.com/your-org/retail-inventory-backend/internal/domain/shopper"
)

// PricingHandler handles discount program and price resolution endpoints
type PricingHandler struct {
	discountService *discount.Service
	shopperService  *shopper.Service
	config          *config.Config
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(discountService *discount.Service, shopperService *shopper.Service, cfg *config.Config) *PricingHandler {
	return &PricingHandler{
		discountService: discountService,
		shopperService:  shopperService,
		config:          cfg,
	}
}

// UploadProgram handles POST /admin/discounts/programs
func (h *PricingHandler) UploadProgram(c *gin.Context) {
	var req discount.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.discountService.Upload(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to upload discount program",
		})
		return
	}

	// Row-level failures are reported per SKU; nothing was written
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Discount program uploaded successfully",
		"data":    result,
	})
}

// DeactivateProgram handles DELETE /admin/discounts/programs/:id
func (h *PricingHandler) DeactivateProgram(c *gin.Context) {
	programID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid program ID",
		})
		return
	}

	if err := h.discountService.Deactivate(c.Request.Context(), uint(programID)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, discount.ErrProgramNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount program deactivated successfully",
	})
}

// shopperContext resolves the pricing context from query parameters. An
// unknown shopper prices as anonymous rather than failing the request.
func (h *PricingHandler) shopperContext(c *gin.Context) discount.Shopper {
	userID := c.Query("user_id")
	societyID := c.Query("society_id")

	ctx, err := h.shopperService.ResolveContext(userID, societyID)
	if err != nil && !errors.Is(err, shopper.ErrShopperNotFound) {
		return discount.Shopper{UserID: userID, SocietyID: societyID}
	}
	return ctx
}

// ResolvePrice handles GET /pricing/:storeId/:skuCode
func (h *PricingHandler) ResolvePrice(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	line, err := h.discountService.ResolvePrice(
		c.Request.Context(), storeID, c.Param("skuCode"), h.shopperContext(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, inventory.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Price resolved successfully",
		"data":    line,
	})
}

// RefreshPrices handles POST /admin/pricing/:storeId/refresh
func (h *PricingHandler) RefreshPrices(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	count, err := h.discountService.RefreshPrices(
		c.Request.Context(), storeID, h.shopperContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to refresh prices",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prices refreshed successfully",
		"count":   count,
	})
}
