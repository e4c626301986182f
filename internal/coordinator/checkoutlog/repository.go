package checkoutlog

import "context"

// Repository is the port for persisting checkout log entries. The
// coordinator depends on this abstraction, not on SQLite directly, so
// tests use an in-memory implementation.
type Repository interface {
	// Save appends a row. The table is an append-only audit log, never
	// an upsert.
	Save(ctx context.Context, entry *Entry) error
}
