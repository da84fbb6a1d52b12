package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS checkouts (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    order_code          TEXT NOT NULL,
    email               TEXT NOT NULL DEFAULT '',
    item_name           TEXT NOT NULL DEFAULT '',
    quantity            INTEGER NOT NULL DEFAULT 1,
    status              TEXT NOT NULL DEFAULT 'pending',
    is_seen_by_owner    INTEGER NOT NULL DEFAULT 0,
    is_seen_by_customer INTEGER NOT NULL DEFAULT 0,
    created_at          TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_checkouts_order_code ON checkouts(order_code);
CREATE INDEX IF NOT EXISTS idx_checkouts_status ON checkouts(status);
CREATE INDEX IF NOT EXISTS idx_checkouts_email ON checkouts(email);

CREATE TABLE IF NOT EXISTS api_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
