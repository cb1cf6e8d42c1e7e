package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"slotforge/slot"
)

// UpsertSlot inserts or replaces a slot record for a page.
func (s *Store) UpsertSlot(ctx context.Context, pageID string, rec *slot.Slot) error {
	styles, _ := json.Marshal(rec.Styles)
	meta, _ := json.Marshal(rec.Metadata)
	now := time.Now().UnixMilli()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO slots (page_id, id, type, class_name, styles, content, metadata, parent_id, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(page_id, id) DO UPDATE SET
			type = excluded.type,
			class_name = excluded.class_name,
			styles = excluded.styles,
			content = excluded.content,
			metadata = excluded.metadata,
			parent_id = excluded.parent_id,
			updated_at = excluded.updated_at`,
		pageID, rec.ID, string(rec.Type), rec.ClassName, string(styles), rec.Content,
		string(meta), nullStr(rec.ParentID), now, now,
	)
	return err
}

// GetSlot retrieves a slot record. Returns (nil, nil) when absent.
func (s *Store) GetSlot(ctx context.Context, pageID, slotID string) (*slot.Slot, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, type, class_name, styles, content, metadata, parent_id
		FROM slots WHERE page_id = ? AND id = ?`, pageID, slotID)
	rec, err := scanSlot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListSlots returns all slot records for a page.
func (s *Store) ListSlots(ctx context.Context, pageID string) ([]*slot.Slot, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, type, class_name, styles, content, metadata, parent_id
		FROM slots WHERE page_id = ? ORDER BY id ASC`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*slot.Slot
	for rows.Next() {
		rec, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ApplySlotUpdate persists a flushed style batch entry: the reconciled class
// string, the current inline styles, and the slot metadata.
func (s *Store) ApplySlotUpdate(ctx context.Context, pageID, slotID, className string, styles map[string]string, metadata slot.Metadata) error {
	stylesJSON, _ := json.Marshal(styles)
	metaJSON, _ := json.Marshal(metadata)
	_, err := s.DB.ExecContext(ctx, `
		UPDATE slots SET class_name = ?, styles = ?, metadata = ?, updated_at = ?
		WHERE page_id = ? AND id = ?`,
		className, string(stylesJSON), string(metaJSON), time.Now().UnixMilli(), pageID, slotID,
	)
	return err
}

// UpdateSlotContent persists sanitized slot content.
func (s *Store) UpdateSlotContent(ctx context.Context, pageID, slotID, content string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE slots SET content = ?, updated_at = ? WHERE page_id = ? AND id = ?`,
		content, time.Now().UnixMilli(), pageID, slotID,
	)
	return err
}

// DeleteSlot removes a slot record.
func (s *Store) DeleteSlot(ctx context.Context, pageID, slotID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM slots WHERE page_id = ? AND id = ?`, pageID, slotID)
	return err
}

func scanSlot(scan func(...any) error) (*slot.Slot, error) {
	rec := &slot.Slot{}
	var kind, styles, meta string
	var parentID sql.NullString

	if err := scan(&rec.ID, &kind, &rec.ClassName, &styles, &rec.Content, &meta, &parentID); err != nil {
		return nil, err
	}
	rec.Type = slot.ParseKind(kind)
	json.Unmarshal([]byte(styles), &rec.Styles)
	json.Unmarshal([]byte(meta), &rec.Metadata)
	rec.ParentID = parentID.String
	return rec, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
