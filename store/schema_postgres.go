package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS checkouts (
    id                  BIGSERIAL PRIMARY KEY,
    order_code          TEXT NOT NULL,
    email               TEXT NOT NULL DEFAULT '',
    item_name           TEXT NOT NULL DEFAULT '',
    quantity            INTEGER NOT NULL DEFAULT 1,
    status              TEXT NOT NULL DEFAULT 'pending',
    is_seen_by_owner    BOOLEAN NOT NULL DEFAULT FALSE,
    is_seen_by_customer BOOLEAN NOT NULL DEFAULT FALSE,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_checkouts_order_code ON checkouts(order_code);
CREATE INDEX IF NOT EXISTS idx_checkouts_status ON checkouts(status);
CREATE INDEX IF NOT EXISTS idx_checkouts_email ON checkouts(email);

CREATE TABLE IF NOT EXISTS api_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
