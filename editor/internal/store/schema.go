package store

// Schema contains the complete DDL for the editor tables.
const Schema = `
-- Pages: one row per editable storefront page, holding the layout markup
CREATE TABLE IF NOT EXISTS pages (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL DEFAULT '',
    name       TEXT NOT NULL DEFAULT '',
    html       TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_tenant ON pages(tenant_id);

-- Slots: the per-element records the style engine reconciles against
CREATE TABLE IF NOT EXISTS slots (
    page_id    TEXT NOT NULL,
    id         TEXT NOT NULL,
    type       TEXT NOT NULL DEFAULT 'div',
    class_name TEXT NOT NULL DEFAULT '',
    styles     TEXT NOT NULL DEFAULT '{}',
    content    TEXT NOT NULL DEFAULT '',
    metadata   TEXT NOT NULL DEFAULT '{}',
    parent_id  TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (page_id, id),
    FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_slots_parent ON slots(page_id, parent_id);

-- Layout cache: last flushed style batch per page, written before the save
-- callback runs so a failed save never loses in-session changes
CREATE TABLE IF NOT EXISTS layout_cache (
    page_id    TEXT PRIMARY KEY,
    payload    TEXT NOT NULL DEFAULT '{}',
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
);
`
