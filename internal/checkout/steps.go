package checkout

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// The persisting phase is three sequential writes against a store that
// offers no cross-row transaction. Each write is a saga step with a
// compensating delete, so a failure after the order insert rolls the
// order back instead of leaving an orphan.

// --- insertOrderStep ---

type insertOrderStep struct {
	orders ports.OrderRepository
	order  *entity.Order
}

func (s *insertOrderStep) Name() string { return "Insert_Order_Step" }

func (s *insertOrderStep) Execute(ctx context.Context) error {
	if err := s.orders.Insert(ctx, s.order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *insertOrderStep) Compensate(ctx context.Context) error {
	return s.orders.Delete(ctx, s.order.ID)
}

// --- insertLinesStep ---

type insertLinesStep struct {
	orders  ports.OrderRepository
	orderID string
	lines   []entity.OrderLine
}

func (s *insertLinesStep) Name() string { return "Insert_Order_Lines_Step" }

func (s *insertLinesStep) Execute(ctx context.Context) error {
	if err := s.orders.InsertLines(ctx, s.lines); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

func (s *insertLinesStep) Compensate(ctx context.Context) error {
	return s.orders.DeleteLines(ctx, s.orderID)
}

// --- clearCartStep ---

type clearCartStep struct {
	carts    ports.CartRepository
	callerID string
}

func (s *clearCartStep) Name() string { return "Clear_Cart_Step" }

func (s *clearCartStep) Execute(ctx context.Context) error {
	if err := s.carts.DeleteAllForCaller(ctx, s.callerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Compensate is empty: the cart clear is the last step, so nothing runs
// after it that could fail and require the cart back.
func (s *clearCartStep) Compensate(ctx context.Context) error { return nil }
