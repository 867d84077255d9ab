// internal/pkg/warehousesync/client.go
package warehousesync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-inventory-backend/internal/config"
	"gorm.io/gorm"
)

// PushPayload is what the external warehouse/catalog service receives for one
// SKU: the grade/MOQ/procurement metadata pushed alongside inventory writes.
type PushPayload struct {
	StoreID             uint    `json:"store_id"`
	SKUCode             string  `json:"sku_code"`
	Grade               string  `json:"grade,omitempty"`
	MOQ                 float64 `json:"moq,omitempty"`
	ProcurementCategory string  `json:"procurement_category,omitempty"`
	AvailableQuantity   float64 `json:"available_quantity"`
	SalePrice           float64 `json:"sale_price"`
}

// Client pushes pending outbox entries to the external warehouse service
type Client struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
	http   *resty.Client
}

// NewClient creates a warehouse sync client
func NewClient(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.Warehouse.BaseURL).
		SetTimeout(cfg.Warehouse.PushTimeout).
		SetRetryCount(cfg.Warehouse.RetryCount).
		SetRetryWaitTime(cfg.Warehouse.RetryWait)
	if cfg.Warehouse.AuthToken != "" {
		httpClient.SetAuthToken(cfg.Warehouse.AuthToken)
	}

	return &Client{
		db:     db,
		config: cfg,
		log:    log,
		http:   httpClient,
	}
}

// EnqueuePayload serializes the payload and writes the outbox row inside the
// caller's transaction
func (c *Client) EnqueuePayload(tx *gorm.DB, payload PushPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode warehouse payload: %w", err)
	}
	return Enqueue(tx, payload.StoreID, payload.SKUCode, string(raw))
}

// EnqueueInventoryPush is the inventory-side enqueue surface: a minimal
// payload carrying the quantities the warehouse service mirrors. Catalog
// metadata is merged in by the flush consumer on the other side.
func (c *Client) EnqueueInventoryPush(tx *gorm.DB, storeID uint, skuCode string, available, salePrice float64) error {
	return c.EnqueuePayload(tx, PushPayload{
		StoreID:           storeID,
		SKUCode:           skuCode,
		AvailableQuantity: available,
		SalePrice:         salePrice,
	})
}

// Flush pushes pending entries to the warehouse service. Called from the ops
// endpoint on an external schedule. Entries that fail stay pending (with the
// error recorded) until the attempt limit, then move to failed.
func (c *Client) Flush(ctx context.Context) (synced, failed int, err error) {
	if c.config.Warehouse.PushDisabled {
		return 0, 0, nil
	}

	var entries []SyncOutboxEntry
	err = c.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Limit(c.config.Warehouse.FlushBatch).
		Find(&entries).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load pending outbox entries: %w", err)
	}

	for i := range entries {
		entry := &entries[i]
		pushErr := c.push(ctx, entry)

		updates := map[string]interface{}{
			"attempts": entry.Attempts + 1,
		}
		if pushErr == nil {
			updates["status"] = StatusSynced
			updates["last_error"] = ""
			synced++
		} else {
			updates["last_error"] = pushErr.Error()
			if entry.Attempts+1 >= c.config.Warehouse.RetryCount*2 {
				updates["status"] = StatusFailed
			}
			failed++
			c.log.WithError(pushErr).WithFields(logrus.Fields{
				"entry_id": entry.EntryID,
				"sku_code": entry.SKUCode,
			}).Warn("Warehouse push failed")
		}

		if err := c.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
			c.log.WithError(err).WithField("entry_id", entry.EntryID).
				Error("Failed to update outbox entry")
		}
	}

	return synced, failed, nil
}

func (c *Client) push(ctx context.Context, entry *SyncOutboxEntry) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(entry.Payload).
		Post("/api/v1/catalog/sync")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("warehouse service returned %d", resp.StatusCode())
	}
	return nil
}
