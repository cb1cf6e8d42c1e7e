package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Page is a stored editable page.
type Page struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id,omitempty"`
	Name      string `json:"name"`
	HTML      string `json:"html"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// UpsertPage inserts or replaces a page record.
func (s *Store) UpsertPage(ctx context.Context, p *Page) error {
	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO pages (id, tenant_id, name, html, created_at, updated_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			name = excluded.name,
			html = excluded.html,
			updated_at = excluded.updated_at`,
		p.ID, p.TenantID, p.Name, p.HTML, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetPage retrieves a page by ID. Returns (nil, nil) when absent.
func (s *Store) GetPage(ctx context.Context, id string) (*Page, error) {
	p := &Page{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, html, created_at, updated_at
		FROM pages WHERE id = ?`, id).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.HTML, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPages returns all pages, optionally filtered by tenant.
func (s *Store) ListPages(ctx context.Context, tenantID string) ([]*Page, error) {
	query := `SELECT id, tenant_id, name, html, created_at, updated_at FROM pages`
	args := []any{}
	if tenantID != "" {
		query += ` WHERE tenant_id = ?`
		args = append(args, tenantID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		p := &Page{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.HTML, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpdatePageHTML replaces the stored layout markup for a page.
func (s *Store) UpdatePageHTML(ctx context.Context, id, html string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE pages SET html = ?, updated_at = ? WHERE id = ?`,
		html, time.Now().UnixMilli(), id,
	)
	return err
}

// DeletePage removes a page and, via cascade, its slots and cache entry.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}

// Stats reports table counts for the one-shot stats command.
type Stats struct {
	Pages       int `json:"pages"`
	Slots       int `json:"slots"`
	CachedPages int `json:"cached_pages"`
}

// GetStats counts pages, slots, and cached batches.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&st.Pages); err != nil {
		return nil, err
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&st.Slots); err != nil {
		return nil, err
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM layout_cache`).Scan(&st.CachedPages); err != nil {
		return nil, err
	}
	return st, nil
}
