package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/coordinator"
	"github.com/jcmexdev/storefront/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// --- fakes ---

type fakeCartRepo struct {
	lines    []entity.CartLine
	loadErr  error
	clearErr error
	cleared  bool
}

func (f *fakeCartRepo) LinesForCaller(_ context.Context, _ string) ([]entity.CartLine, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.lines, nil
}

func (f *fakeCartRepo) FindLine(context.Context, string, string) (*entity.CartLine, error) {
	return nil, ports.ErrNotFound
}
func (f *fakeCartRepo) Insert(context.Context, *entity.CartLine) error          { return nil }
func (f *fakeCartRepo) UpdateQuantity(context.Context, string, string, int) error { return nil }
func (f *fakeCartRepo) DeleteLine(context.Context, string, string) error        { return nil }

func (f *fakeCartRepo) DeleteAllForCaller(context.Context, string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	f.lines = nil
	return nil
}

func (f *fakeCartRepo) CountForCaller(context.Context, string) (int, error) {
	return len(f.lines), nil
}

type fakeOrderRepo struct {
	orders map[string]*entity.Order
	lines  map[string][]entity.OrderLine

	insertLinesErr error
	deleteErr      error
	deleteLinesErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*entity.Order),
		lines:  make(map[string][]entity.OrderLine),
	}
}

func (f *fakeOrderRepo) Insert(_ context.Context, o *entity.Order) error {
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) InsertLines(_ context.Context, lines []entity.OrderLine) error {
	if f.insertLinesErr != nil {
		return f.insertLinesErr
	}
	for _, l := range lines {
		f.lines[l.OrderID] = append(f.lines[l.OrderID], l)
	}
	return nil
}

func (f *fakeOrderRepo) DeleteLines(_ context.Context, orderID string) error {
	if f.deleteLinesErr != nil {
		return f.deleteLinesErr
	}
	delete(f.lines, orderID)
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, orderID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrderRepo) Get(_ context.Context, id string) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ports.ErrNotFound)
	}
	cp := *o
	cp.Lines = f.lines[id]
	return &cp, nil
}

func (f *fakeOrderRepo) ForCaller(context.Context, string) ([]entity.Order, error) { return nil, nil }
func (f *fakeOrderRepo) All(context.Context) ([]entity.Order, error)               { return nil, nil }

type memLog struct {
	entries []*checkoutlog.Entry
}

func (m *memLog) Save(_ context.Context, e *checkoutlog.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLog) last() *checkoutlog.Entry {
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1]
}

type memIdem struct {
	keys map[string]string // "<callerID>:<key>" → order ID
}

func newMemIdem() *memIdem { return &memIdem{keys: make(map[string]string)} }

func (m *memIdem) OrderForKey(_ context.Context, callerID, key string) (string, bool, error) {
	id, ok := m.keys[callerID+":"+key]
	return id, ok, nil
}

func (m *memIdem) RememberOrder(_ context.Context, callerID, key, orderID string, _ time.Duration) error {
	m.keys[callerID+":"+key] = orderID
	return nil
}

// sharedIdem ignores the caller when storing, simulating a pre-existing
// unscoped record in the store.
type sharedIdem struct {
	keys map[string]string
}

func (m *sharedIdem) OrderForKey(_ context.Context, _, key string) (string, bool, error) {
	id, ok := m.keys[key]
	return id, ok, nil
}

func (m *sharedIdem) RememberOrder(_ context.Context, _, key, orderID string, _ time.Duration) error {
	m.keys[key] = orderID
	return nil
}

type capturedEvents struct {
	events []ports.OrderPlaced
}

func (c *capturedEvents) PublishOrderPlaced(_ context.Context, evt ports.OrderPlaced) error {
	c.events = append(c.events, evt)
	return nil
}

// --- helpers ---

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func twoLineCart() []entity.CartLine {
	return []entity.CartLine{
		{
			ID: "l1", CallerID: "u1", ProductID: "p1", Quantity: 2,
			Product: entity.Product{ID: "p1", Name: "Widget", Price: price("9.99")},
		},
		{
			ID: "l2", CallerID: "u1", ProductID: "p2", Quantity: 1,
			Product: entity.Product{ID: "p2", Name: "Gadget", Price: price("5.00")},
		},
	}
}

// --- tests ---

func TestPlaceHappyPath(t *testing.T) {
	carts := &fakeCartRepo{lines: twoLineCart()}
	orders := newFakeOrderRepo()
	log := &memLog{}
	events := &capturedEvents{}
	wf := NewWorkflow(carts, orders, log, events, newMemIdem())

	placed, err := wf.Place(context.Background(), "u1", "", validForm())
	require.NoError(t, err)

	require.True(t, placed.Total.Equal(price("24.98")), "total was %s", placed.Total)
	require.Equal(t, entity.StatusCompleted, placed.Status)
	require.Len(t, placed.Lines, 2, "one order line per distinct cart line")

	byProduct := map[string]entity.OrderLine{}
	for _, l := range placed.Lines {
		byProduct[l.ProductName] = l
	}
	require.Equal(t, 2, byProduct["Widget"].Quantity)
	require.True(t, byProduct["Widget"].UnitPrice.Equal(price("9.99")))
	require.Equal(t, 1, byProduct["Gadget"].Quantity)
	require.True(t, byProduct["Gadget"].UnitPrice.Equal(price("5.00")))

	// Exactly one order persisted, cart cleared, completion logged.
	require.Len(t, orders.orders, 1)
	require.True(t, carts.cleared)
	require.Equal(t, checkoutlog.StatusCompleted, log.last().Status)

	require.Len(t, events.events, 1)
	require.Equal(t, placed.ID, events.events[0].OrderID)
	require.Equal(t, "24.98", events.events[0].Total)
}

func TestPlaceEmptyCart(t *testing.T) {
	orders := newFakeOrderRepo()
	wf := NewWorkflow(&fakeCartRepo{}, orders, &memLog{}, nil, nil)

	_, err := wf.Place(context.Background(), "u1", "", validForm())
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Empty(t, orders.orders, "an empty cart must never create an order")
}

func TestPlaceInvalidFormWritesNothing(t *testing.T) {
	carts := &fakeCartRepo{lines: twoLineCart()}
	orders := newFakeOrderRepo()
	wf := NewWorkflow(carts, orders, &memLog{}, nil, nil)

	form := validForm()
	form.CardNumber = "123456781234567" // 15 digits

	_, err := wf.Place(context.Background(), "u1", "", form)

	var ferr *entity.FieldError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "card_number", ferr.Field)
	require.Empty(t, orders.orders)
	require.False(t, carts.cleared)
}

func TestPlaceLineInsertFailureCompensatesOrder(t *testing.T) {
	carts := &fakeCartRepo{lines: twoLineCart()}
	orders := newFakeOrderRepo()
	orders.insertLinesErr = errors.New("disk full")
	log := &memLog{}
	wf := NewWorkflow(carts, orders, log, nil, nil)

	_, err := wf.Place(context.Background(), "u1", "", validForm())
	require.Error(t, err)

	var pce *PartialCommitError
	require.False(t, errors.As(err, &pce), "a fully compensated failure is a clean failure")

	var stepErr *coordinator.StepError
	require.ErrorAs(t, err, &stepErr)
	require.True(t, stepErr.Compensated())

	require.Empty(t, orders.orders, "the inserted order must be rolled back")
	require.False(t, carts.cleared, "the cart must survive a failed placement")
	require.Equal(t, checkoutlog.StatusFailed, log.last().Status)
}

func TestPlaceCompensationFailureIsPartialCommit(t *testing.T) {
	carts := &fakeCartRepo{lines: twoLineCart()}
	orders := newFakeOrderRepo()
	orders.insertLinesErr = errors.New("disk full")
	orders.deleteErr = errors.New("still down") // rollback of the order fails too
	wf := NewWorkflow(carts, orders, &memLog{}, nil, nil)

	_, err := wf.Place(context.Background(), "u1", "", validForm())

	var pce *PartialCommitError
	require.ErrorAs(t, err, &pce, "an un-compensated failure must be distinguishable")
	require.NotEmpty(t, pce.OrderID)
	require.Contains(t, orders.orders, pce.OrderID, "the orphaned order is named for reconciliation")
}

func TestPlaceClearCartFailureCompensatesEverything(t *testing.T) {
	carts := &fakeCartRepo{lines: twoLineCart(), clearErr: errors.New("locked")}
	orders := newFakeOrderRepo()
	wf := NewWorkflow(carts, orders, &memLog{}, nil, nil)

	_, err := wf.Place(context.Background(), "u1", "", validForm())
	require.Error(t, err)

	require.Empty(t, orders.orders)
	require.Empty(t, orders.lines)
}

func TestPlaceCartReloadFailure(t *testing.T) {
	carts := &fakeCartRepo{loadErr: errors.New("timeout")}
	orders := newFakeOrderRepo()
	wf := NewWorkflow(carts, orders, &memLog{}, nil, nil)

	_, err := wf.Place(context.Background(), "u1", "", validForm())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEmptyCart)
	require.Empty(t, orders.orders)
}

func TestPlaceReplaysRepeatedSubmission(t *testing.T) {
	carts := &fakeCartRepo{lines: twoLineCart()}
	orders := newFakeOrderRepo()
	idem := newMemIdem()
	wf := NewWorkflow(carts, orders, &memLog{}, nil, idem)

	first, err := wf.Place(context.Background(), "u1", "sub-1", validForm())
	require.NoError(t, err)

	// The cart is empty now; without the key this would be ErrEmptyCart.
	second, err := wf.Place(context.Background(), "u1", "sub-1", validForm())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "a double submit must return the original order")
	require.Len(t, orders.orders, 1)
}

func TestPlaceIdempotencyKeyScopedToCaller(t *testing.T) {
	orders := newFakeOrderRepo()
	idem := newMemIdem()

	u1Carts := &fakeCartRepo{lines: twoLineCart()}
	_, err := NewWorkflow(u1Carts, orders, &memLog{}, nil, idem).
		Place(context.Background(), "u1", "shared-key", validForm())
	require.NoError(t, err)

	// Another caller submitting the same key must get their own order
	// placed from their own cart, never a replay of u1's.
	u2Carts := &fakeCartRepo{lines: []entity.CartLine{
		{
			ID: "l3", CallerID: "u2", ProductID: "p2", Quantity: 1,
			Product: entity.Product{ID: "p2", Name: "Gadget", Price: price("5.00")},
		},
	}}
	placed, err := NewWorkflow(u2Carts, orders, &memLog{}, nil, idem).
		Place(context.Background(), "u2", "shared-key", validForm())
	require.NoError(t, err)

	require.Equal(t, "u2", placed.CallerID)
	require.True(t, placed.Total.Equal(price("5.00")))
	require.True(t, u2Carts.cleared, "the second caller's cart must be converted")
	require.Len(t, orders.orders, 2, "both callers get their own order")
}

func TestPlaceReplayRejectsForeignOrder(t *testing.T) {
	orders := newFakeOrderRepo()
	idem := &sharedIdem{keys: make(map[string]string)}

	u1Carts := &fakeCartRepo{lines: twoLineCart()}
	first, err := NewWorkflow(u1Carts, orders, &memLog{}, nil, idem).
		Place(context.Background(), "u1", "shared-key", validForm())
	require.NoError(t, err)

	// Even when the record itself is unscoped, the replay must notice
	// the stored order belongs to someone else and place afresh.
	u2Carts := &fakeCartRepo{lines: []entity.CartLine{
		{
			ID: "l3", CallerID: "u2", ProductID: "p2", Quantity: 1,
			Product: entity.Product{ID: "p2", Name: "Gadget", Price: price("5.00")},
		},
	}}
	placed, err := NewWorkflow(u2Carts, orders, &memLog{}, nil, idem).
		Place(context.Background(), "u2", "shared-key", validForm())
	require.NoError(t, err)

	require.NotEqual(t, first.ID, placed.ID)
	require.Equal(t, "u2", placed.CallerID)
}
