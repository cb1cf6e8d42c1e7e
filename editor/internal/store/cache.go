package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotforge/dbopen"
	"slotforge/tracker"
)

// LayoutCache is the per-page durable batch cache backing tracker.Cache.
// Saves merge into the existing entry so partial flushes accumulate until
// the batch is cleared after a confirmed save.
type LayoutCache struct {
	s      *Store
	pageID string
}

// NewLayoutCache returns the cache view for one page.
func NewLayoutCache(s *Store, pageID string) *LayoutCache {
	return &LayoutCache{s: s, pageID: pageID}
}

// SaveBatch merges b into the stored batch for the page.
func (c *LayoutCache) SaveBatch(ctx context.Context, b tracker.Batch) error {
	return dbopen.RunTx(ctx, c.s.DB, func(tx *sql.Tx) error {
		existing := tracker.Batch{}
		var payload string
		err := tx.QueryRowContext(ctx, `
			SELECT payload FROM layout_cache WHERE page_id = ?`, c.pageID).Scan(&payload)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &existing); err != nil {
				return fmt.Errorf("store: corrupt layout cache for %s: %w", c.pageID, err)
			}
		}
		for id, u := range b {
			existing[id] = u
		}

		merged, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO layout_cache (page_id, payload, updated_at)
			VALUES (?,?,?)
			ON CONFLICT(page_id) DO UPDATE SET
				payload = excluded.payload,
				updated_at = excluded.updated_at`,
			c.pageID, string(merged), time.Now().UnixMilli(),
		)
		return err
	})
}

// LoadBatch returns the stored batch, or an empty batch when absent.
func (c *LayoutCache) LoadBatch(ctx context.Context) (tracker.Batch, error) {
	var payload string
	err := c.s.DB.QueryRowContext(ctx, `
		SELECT payload FROM layout_cache WHERE page_id = ?`, c.pageID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return tracker.Batch{}, nil
	}
	if err != nil {
		return nil, err
	}

	b := tracker.Batch{}
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("store: corrupt layout cache for %s: %w", c.pageID, err)
	}
	return b, nil
}

// Clear removes the stored batch for the page.
func (c *LayoutCache) Clear(ctx context.Context) error {
	_, err := c.s.DB.ExecContext(ctx, `DELETE FROM layout_cache WHERE page_id = ?`, c.pageID)
	return err
}
