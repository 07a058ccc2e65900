package postgres

import (
	"context"
	"database/sql"
)

// schema mirrors the SQLite schema with native PostgreSQL types.
// Timestamps are Unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    total_order_amount DOUBLE PRECISION NOT NULL,
    tax_percentage DOUBLE PRECISION,
    service_percentage DOUBLE PRECISION,
    delivery_fee DOUBLE PRECISION,
    number_of_friends INTEGER,
    insta_pay_url TEXT NOT NULL DEFAULT '',
    bill_image TEXT NOT NULL DEFAULT '',
    bill_image_key TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS friends (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    payment_method TEXT NOT NULL,
    has_paid BOOLEAN NOT NULL DEFAULT FALSE,
    subtotal DOUBLE PRECISION NOT NULL,
    tax_amount DOUBLE PRECISION NOT NULL,
    service_amount DOUBLE PRECISION NOT NULL,
    delivery_share DOUBLE PRECISION NOT NULL,
    total_amount DOUBLE PRECISION NOT NULL,
    joined_at BIGINT NOT NULL,
    UNIQUE (session_id, position)
);

CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    friend_id TEXT NOT NULL REFERENCES friends(id) ON DELETE CASCADE,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    product_name TEXT NOT NULL,
    unit_price DOUBLE PRECISION NOT NULL,
    quantity INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_friends_session_id ON friends(session_id);
CREATE INDEX IF NOT EXISTS idx_products_session_id ON products(session_id);
CREATE INDEX IF NOT EXISTS idx_products_friend_id ON products(friend_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
