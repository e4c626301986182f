// Package sqlite is the storefront's persistence adapter.
//
// WAL mode is enabled on Open so that readers never block writers and
// vice versa — the checkout saga writes while catalog and cart views read.
// Every statement is independently atomic; no cross-statement transaction
// is exposed, which is exactly why the checkout workflow compensates
// instead of committing.
package sqlite

import (
	"database/sql"
	"fmt"

	// Register the pure-Go SQLite driver. modernc.org/sqlite instead of
	// mattn/go-sqlite3 avoids CGO, keeping Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL applied once on startup. Money columns are TEXT
// holding decimal strings; timestamps are RFC3339 TEXT (SQLite idiom).
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT    NOT NULL,
    description TEXT    NOT NULL DEFAULT '',
    price       TEXT    NOT NULL,
    stock       INTEGER NOT NULL DEFAULT 0,
    image_url   TEXT    NOT NULL DEFAULT '',
    created_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS cart (
    id          TEXT PRIMARY KEY,
    user_id     TEXT    NOT NULL,
    product_id  TEXT    NOT NULL REFERENCES products(id),
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    created_at  TEXT    NOT NULL,

    -- One line per (caller, product): "add to cart" increments instead
    -- of duplicating, and this constraint backstops the race.
    UNIQUE (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    total_price TEXT NOT NULL,
    status      TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id           TEXT PRIMARY KEY,
    order_id     TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id   TEXT    NOT NULL,
    product_name TEXT    NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL,
    -- Unit price frozen at purchase time, decoupled from products.price.
    price        TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id TEXT NOT NULL,
    role    TEXT NOT NULL,
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS profiles (
    id    TEXT PRIMARY KEY,
    name  TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT ''
);

-- Append-only audit of checkout executions, one row per transition.
CREATE TABLE IF NOT EXISTS checkout_logs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    checkout_id    TEXT NOT NULL,
    status         TEXT NOT NULL,
    current_step   TEXT NOT NULL DEFAULT '',
    error_messages TEXT NOT NULL DEFAULT '[]',
    trace_id       TEXT NOT NULL DEFAULT '',
    span_id        TEXT NOT NULL DEFAULT '',
    updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cart_user           ON cart(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_user         ON orders(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_order_items_order   ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_id    ON checkout_logs(checkout_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace ON checkout_logs(trace_id);
`

// Store owns the database handle and hands out per-table repositories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the
// schema. The _pragma parameters configure the modernc driver: WAL for
// concurrent readers, foreign_keys for integrity, busy_timeout to wait
// for locks instead of failing immediately.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Products() *ProductRepo         { return &ProductRepo{db: s.db} }
func (s *Store) Carts() *CartRepo               { return &CartRepo{db: s.db} }
func (s *Store) Orders() *OrderRepo             { return &OrderRepo{db: s.db} }
func (s *Store) Roles() *RoleRepo               { return &RoleRepo{db: s.db} }
func (s *Store) Profiles() *ProfileRepo         { return &ProfileRepo{db: s.db} }
func (s *Store) CheckoutLogs() *CheckoutLogRepo { return &CheckoutLogRepo{db: s.db} }
