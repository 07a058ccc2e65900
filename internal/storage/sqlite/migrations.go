package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Timestamps are Unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    total_order_amount REAL NOT NULL,
    tax_percentage REAL,
    service_percentage REAL,
    delivery_fee REAL,
    number_of_friends INTEGER,
    insta_pay_url TEXT NOT NULL DEFAULT '',
    bill_image TEXT NOT NULL DEFAULT '',
    bill_image_key TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS friends (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    payment_method TEXT NOT NULL,
    has_paid INTEGER NOT NULL DEFAULT 0,
    subtotal REAL NOT NULL,
    tax_amount REAL NOT NULL,
    service_amount REAL NOT NULL,
    delivery_share REAL NOT NULL,
    total_amount REAL NOT NULL,
    joined_at INTEGER NOT NULL,
    UNIQUE (session_id, position),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    friend_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    product_name TEXT NOT NULL,
    unit_price REAL NOT NULL,
    quantity INTEGER NOT NULL,
    FOREIGN KEY (friend_id) REFERENCES friends(id) ON DELETE CASCADE,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friends_session_id ON friends(session_id);
CREATE INDEX IF NOT EXISTS idx_products_session_id ON products(session_id);
CREATE INDEX IF NOT EXISTS idx_products_friend_id ON products(friend_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
