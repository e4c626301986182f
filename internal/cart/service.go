// Package cart aggregates a caller's cart lines and exposes the mutation
// operations the storefront needs before checkout.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// ErrLoad wraps store failures on cart reads so the transport layer can
// surface a generic retryable error instead of crashing the view.
var ErrLoad = errors.New("failed to load cart")

type Service struct {
	carts ports.CartRepository
}

func NewService(carts ports.CartRepository) *Service {
	return &Service{carts: carts}
}

// Load returns the caller's cart lines joined with the current product
// snapshot.
func (s *Service) Load(ctx context.Context, callerID string) ([]entity.CartLine, error) {
	lines, err := s.carts.LinesForCaller(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return lines, nil
}

// Total computes Σ(quantity × current product price) over the given
// lines. This is the display-time total; the frozen unit price an order
// line captures later is a separate concern.
func Total(lines []entity.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// SetQuantity updates a line's quantity. Quantities below 1 are ignored:
// shrinking a line to nothing is expressed via Remove, never via a
// zero-quantity update.
func (s *Service) SetQuantity(ctx context.Context, callerID, lineID string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if err := s.carts.UpdateQuantity(ctx, callerID, lineID, quantity); err != nil {
		return fmt.Errorf("update quantity for line %s: %w", lineID, err)
	}
	return nil
}

// Remove deletes a line unconditionally. Removing an already-gone line
// succeeds.
func (s *Service) Remove(ctx context.Context, callerID, lineID string) error {
	if err := s.carts.DeleteLine(ctx, callerID, lineID); err != nil {
		return fmt.Errorf("remove line %s: %w", lineID, err)
	}
	return nil
}

// AddProduct puts a product in the caller's cart: +1 on the existing line
// when the product is already there, a fresh line with quantity 1
// otherwise. The lookup-then-write pair is not race-free across
// concurrent requests by the same caller; the store's unique
// (caller, product) constraint backstops duplicates.
func (s *Service) AddProduct(ctx context.Context, callerID, productID string) error {
	existing, err := s.carts.FindLine(ctx, callerID, productID)
	switch {
	case err == nil:
		if err := s.carts.UpdateQuantity(ctx, callerID, existing.ID, existing.Quantity+1); err != nil {
			return fmt.Errorf("increment line %s: %w", existing.ID, err)
		}
		return nil
	case errors.Is(err, ports.ErrNotFound):
		line := &entity.CartLine{
			ID:        uuid.NewString(),
			CallerID:  callerID,
			ProductID: productID,
			Quantity:  1,
		}
		if err := s.carts.Insert(ctx, line); err != nil {
			return fmt.Errorf("insert cart line: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find cart line: %w", err)
	}
}

// Count returns the number of lines in the caller's cart (the nav badge).
func (s *Service) Count(ctx context.Context, callerID string) (int, error) {
	n, err := s.carts.CountForCaller(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return n, nil
}
