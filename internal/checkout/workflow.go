// Package checkout turns a caller's cart into a persisted order.
//
// One placement is a short state machine: the form is validated, the cart
// is re-read from the store and priced, and the three persistence writes
// run as a compensating saga. The only state an attempt leaves behind on
// a clean failure is checkout log rows.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/coordinator"
	"github.com/jcmexdev/storefront/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
// The caller should be sent back to cart review, not allowed to submit.
var ErrEmptyCart = errors.New("cart is empty")

// PartialCommitError means the order insert succeeded but a later step
// failed AND its compensation failed, so the store may hold a partial
// order. It is never swallowed: the workflow logs it at error level and
// the checkout log carries the detail for reconciliation.
type PartialCommitError struct {
	OrderID string
	Err     error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("order %s incompletely committed: %v", e.OrderID, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

// idempotencyStore remembers which order a submission key produced, so a
// double submit returns the original order instead of placing a second
// one. Records are scoped per caller: the same key from two callers is
// two records. Best effort: errors degrade to "no record".
type idempotencyStore interface {
	OrderForKey(ctx context.Context, callerID, key string) (orderID string, ok bool, err error)
	RememberOrder(ctx context.Context, callerID, key, orderID string, ttl time.Duration) error
}

// Workflow orchestrates one order placement per call. It holds no
// per-call state; every dependency call suspends at a store boundary.
type Workflow struct {
	carts  ports.CartRepository
	orders ports.OrderRepository
	log    checkoutlog.Repository
	events ports.OrderEventPublisher
	idem   idempotencyStore // nil-safe: double submits are not de-duplicated if nil

	idemTTL time.Duration
}

func NewWorkflow(
	carts ports.CartRepository,
	orders ports.OrderRepository,
	log checkoutlog.Repository,
	events ports.OrderEventPublisher,
	idem idempotencyStore,
) *Workflow {
	if events == nil {
		events = ports.NopPublisher{}
	}
	return &Workflow{
		carts:   carts,
		orders:  orders,
		log:     log,
		events:  events,
		idem:    idem,
		idemTTL: 24 * time.Hour,
	}
}

// Place runs one checkout attempt for the caller. idemKey may be empty,
// in which case repeat submissions are not de-duplicated.
//
// Failure modes, in order of detection:
//   - *entity.FieldError: a form field violated its structural rule; no
//     store call was made.
//   - ErrEmptyCart: the re-read cart had no lines; no order was created.
//   - a store error: the saga failed and fully compensated; no order
//     remains.
//   - *PartialCommitError: the saga failed and compensation also failed;
//     the order ID inside names what to reconcile.
func (w *Workflow) Place(ctx context.Context, callerID, idemKey string, form Form) (*entity.Order, error) {
	// Validating.
	if ferr := form.Validate(); ferr != nil {
		return nil, ferr
	}

	if order, ok := w.replayedOrder(ctx, callerID, idemKey); ok {
		return order, nil
	}

	// Pricing: the cart is re-read here, never trusted from the request.
	lines, err := w.carts.LinesForCaller(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := buildOrder(callerID, lines)

	// Persisting: three writes as one compensable unit.
	steps := []coordinator.Step{
		&insertOrderStep{orders: w.orders, order: order},
		&insertLinesStep{orders: w.orders, orderID: order.ID, lines: order.Lines},
		&clearCartStep{carts: w.carts, callerID: callerID},
	}
	saga := coordinator.NewOrchestrator(order.ID, steps, w.log)

	if err := saga.Start(ctx); err != nil {
		var stepErr *coordinator.StepError
		if errors.As(err, &stepErr) && !stepErr.Compensated() {
			slog.ErrorContext(ctx, "order incompletely committed, reconciliation required",
				"order_id", order.ID, "error", err)
			return nil, &PartialCommitError{OrderID: order.ID, Err: err}
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	w.rememberIdempotency(ctx, callerID, idemKey, order.ID)
	w.publishPlaced(ctx, order)

	return order, nil
}

// buildOrder prices the cart and freezes each line's unit price at this
// moment. Display-time and persist-time totals agree because both are
// Σ(qty × current price) over the same snapshot.
func buildOrder(callerID string, lines []entity.CartLine) *entity.Order {
	order := &entity.Order{
		ID:        uuid.NewString(),
		CallerID:  callerID,
		Status:    entity.StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}

	total := decimal.Zero
	for _, l := range lines {
		ol := entity.OrderLine{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ProductID:   l.ProductID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
		}
		order.Lines = append(order.Lines, ol)
		total = total.Add(ol.Extension())
	}
	order.Total = total
	return order
}

// replayedOrder returns the previously placed order for a repeated
// submission key of this caller. Lookup failures degrade to a fresh
// placement. The ownership check backstops the per-caller key scoping:
// an order belonging to someone else is never handed out.
func (w *Workflow) replayedOrder(ctx context.Context, callerID, idemKey string) (*entity.Order, bool) {
	if w.idem == nil || idemKey == "" {
		return nil, false
	}
	orderID, ok, err := w.idem.OrderForKey(ctx, callerID, idemKey)
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	order, err := w.orders.Get(ctx, orderID)
	if err != nil {
		slog.WarnContext(ctx, "idempotent replay failed to load order",
			"order_id", orderID, "error", err)
		return nil, false
	}
	if order.CallerID != callerID {
		slog.WarnContext(ctx, "idempotency record points at another caller's order, ignoring",
			"order_id", orderID, "caller_id", callerID)
		return nil, false
	}
	slog.InfoContext(ctx, "replaying order for repeated submission",
		"order_id", orderID, "idempotency_key", idemKey)
	return order, true
}

func (w *Workflow) rememberIdempotency(ctx context.Context, callerID, idemKey, orderID string) {
	if w.idem == nil || idemKey == "" {
		return
	}
	if err := w.idem.RememberOrder(ctx, callerID, idemKey, orderID, w.idemTTL); err != nil {
		slog.WarnContext(ctx, "failed to record idempotency key",
			"order_id", orderID, "error", err)
	}
}

func (w *Workflow) publishPlaced(ctx context.Context, order *entity.Order) {
	evt := ports.OrderPlaced{
		OrderID:   order.ID,
		CallerID:  order.CallerID,
		Total:     order.Total.String(),
		LineCount: len(order.Lines),
		PlacedAt:  order.CreatedAt,
	}
	if err := w.events.PublishOrderPlaced(ctx, evt); err != nil {
		slog.WarnContext(ctx, "failed to publish order.placed event",
			"order_id", order.ID, "error", err)
	}
}
