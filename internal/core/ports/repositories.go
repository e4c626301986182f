// Package ports holds the interfaces the storefront core depends on.
// Services depend on these abstractions, not on SQLite/Redis/Kafka
// directly, so the adapters can be swapped for fakes in tests.
package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
)

// ErrNotFound is returned by lookups when no row matches. Callers that
// treat absence as a normal outcome (the role gate, add-or-increment)
// test for it with errors.Is.
var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	// List returns the whole catalog, newest first.
	List(ctx context.Context) ([]entity.Product, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
}

type CartRepository interface {
	// LinesForCaller returns the caller's cart joined with the current
	// product snapshot for each line.
	LinesForCaller(ctx context.Context, callerID string) ([]entity.CartLine, error)

	// FindLine locates the line for a (caller, product) pair.
	// Returns ErrNotFound when the product is not in the cart.
	FindLine(ctx context.Context, callerID, productID string) (*entity.CartLine, error)

	Insert(ctx context.Context, line *entity.CartLine) error
	UpdateQuantity(ctx context.Context, callerID, lineID string, quantity int) error

	// DeleteLine removes one line. Deleting an already-gone line is not
	// an error.
	DeleteLine(ctx context.Context, callerID, lineID string) error

	// DeleteAllForCaller clears the cart after an order is placed.
	DeleteAllForCaller(ctx context.Context, callerID string) error

	CountForCaller(ctx context.Context, callerID string) (int, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, o *entity.Order) error
	InsertLines(ctx context.Context, lines []entity.OrderLine) error

	// DeleteLines and Delete exist for saga compensation only; orders are
	// otherwise immutable once placed.
	DeleteLines(ctx context.Context, orderID string) error
	Delete(ctx context.Context, orderID string) error

	Get(ctx context.Context, id string) (*entity.Order, error)

	// ForCaller returns the caller's orders with joined lines, newest first.
	ForCaller(ctx context.Context, callerID string) ([]entity.Order, error)

	// All returns every order with joined lines, newest first. Admin only;
	// the authorization gate is the caller's responsibility.
	All(ctx context.Context) ([]entity.Order, error)
}

type RoleRepository interface {
	// HasRole reports whether a (caller, role) assignment exists.
	// Absence is (false, nil), not an error.
	HasRole(ctx context.Context, callerID, role string) (bool, error)
}

type ProfileRepository interface {
	// Get returns ErrNotFound when the caller has no profile row.
	Get(ctx context.Context, callerID string) (*entity.Profile, error)
}
