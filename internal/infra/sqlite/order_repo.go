package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// OrderRepo implements ports.OrderRepository. Inserts and deletes are
// deliberately separate single-table statements: the checkout saga owns
// the sequencing and the compensation.
type OrderRepo struct {
	db *sql.DB
}

func (r *OrderRepo) Insert(ctx context.Context, o *entity.Order) error {
	const q = `
		INSERT INTO orders (id, user_id, total_price, status, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		o.ID, o.CallerID, o.Total.String(), o.Status, formatTime(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepo) InsertLines(ctx context.Context, lines []entity.OrderLine) error {
	const q = `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
		VALUES (?, ?, ?, ?, ?, ?)`

	for _, l := range lines {
		_, err := r.db.ExecContext(ctx, q,
			l.ID, l.OrderID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice.String())
		if err != nil {
			return fmt.Errorf("sqlite: insert order line %q: %w", l.ID, err)
		}
	}
	return nil
}

func (r *OrderRepo) DeleteLines(ctx context.Context, orderID string) error {
	const q = `DELETE FROM order_items WHERE order_id = ?`

	if _, err := r.db.ExecContext(ctx, q, orderID); err != nil {
		return fmt.Errorf("sqlite: delete lines of order %q: %w", orderID, err)
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, orderID string) error {
	const q = `DELETE FROM orders WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, q, orderID); err != nil {
		return fmt.Errorf("sqlite: delete order %q: %w", orderID, err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*entity.Order, error) {
	const q = `SELECT id, user_id, total_price, status, created_at FROM orders WHERE id = ?`

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: order %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.linesFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

func (r *OrderRepo) ForCaller(ctx context.Context, callerID string) ([]entity.Order, error) {
	const q = `
		SELECT id, user_id, total_price, status, created_at
		FROM   orders
		WHERE  user_id = ?
		ORDER  BY created_at DESC, id`

	return r.queryOrders(ctx, q, callerID)
}

func (r *OrderRepo) All(ctx context.Context) ([]entity.Order, error) {
	const q = `
		SELECT id, user_id, total_price, status, created_at
		FROM   orders
		ORDER  BY created_at DESC, id`

	return r.queryOrders(ctx, q)
}

func (r *OrderRepo) queryOrders(ctx context.Context, q string, args ...any) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []entity.Order
		ids    []string
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

// linesFor loads the order_items rows for a set of orders in one query.
func (r *OrderRepo) linesFor(ctx context.Context, orderIDs []string) (map[string][]entity.OrderLine, error) {
	q := `
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM   order_items
		WHERE  order_id IN (?` + repeatPlaceholder(len(orderIDs)-1) + `)
		ORDER  BY order_id, id`

	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[string][]entity.OrderLine)
	for rows.Next() {
		var (
			l     entity.OrderLine
			price string
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &price); err != nil {
			return nil, fmt.Errorf("sqlite: scan order line: %w", err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: order line %q price %q: %w", l.ID, price, err)
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load order lines: %w", err)
	}
	return lines, nil
}

func scanOrder(s scanner) (*entity.Order, error) {
	var (
		o         entity.Order
		total     string
		createdAt string
	)
	if err := s.Scan(&o.ID, &o.CallerID, &total, &o.Status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scan order: %w", err)
	}

	var err error
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: order %q total %q: %w", o.ID, total, err)
	}
	if o.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// repeatPlaceholder returns n copies of ", ?" for IN clauses.
func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
