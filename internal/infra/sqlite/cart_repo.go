package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// CartRepo implements ports.CartRepository. Reads join the current
// product snapshot so cart views always price against the live catalog.
type CartRepo struct {
	db *sql.DB
}

func (r *CartRepo) LinesForCaller(ctx context.Context, callerID string) ([]entity.CartLine, error) {
	const q = `
		SELECT c.id, c.user_id, c.product_id, c.quantity,
		       p.name, p.price, p.image_url
		FROM   cart c
		JOIN   products p ON p.id = c.product_id
		WHERE  c.user_id = ?
		ORDER  BY c.created_at, c.id`

	rows, err := r.db.QueryContext(ctx, q, callerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load cart for %q: %w", callerID, err)
	}
	defer rows.Close()

	var lines []entity.CartLine
	for rows.Next() {
		var (
			l     entity.CartLine
			price string
		)
		if err := rows.Scan(&l.ID, &l.CallerID, &l.ProductID, &l.Quantity,
			&l.Product.Name, &price, &l.Product.ImageURL); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart line: %w", err)
		}
		if l.Product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: cart line %q price %q: %w", l.ID, price, err)
		}
		l.Product.ID = l.ProductID
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load cart for %q: %w", callerID, err)
	}
	return lines, nil
}

func (r *CartRepo) FindLine(ctx context.Context, callerID, productID string) (*entity.CartLine, error) {
	const q = `
		SELECT id, user_id, product_id, quantity
		FROM   cart
		WHERE  user_id = ? AND product_id = ?`

	var l entity.CartLine
	err := r.db.QueryRowContext(ctx, q, callerID, productID).
		Scan(&l.ID, &l.CallerID, &l.ProductID, &l.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: cart line for product %q: %w", productID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find cart line: %w", err)
	}
	return &l, nil
}

func (r *CartRepo) Insert(ctx context.Context, line *entity.CartLine) error {
	const q = `
		INSERT INTO cart (id, user_id, product_id, quantity, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		line.ID, line.CallerID, line.ProductID, line.Quantity, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("sqlite: insert cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, callerID, lineID string, quantity int) error {
	const q = `UPDATE cart SET quantity = ? WHERE id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, q, quantity, lineID, callerID); err != nil {
		return fmt.Errorf("sqlite: update cart line %q: %w", lineID, err)
	}
	return nil
}

func (r *CartRepo) DeleteLine(ctx context.Context, callerID, lineID string) error {
	const q = `DELETE FROM cart WHERE id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, q, lineID, callerID); err != nil {
		return fmt.Errorf("sqlite: delete cart line %q: %w", lineID, err)
	}
	return nil
}

func (r *CartRepo) DeleteAllForCaller(ctx context.Context, callerID string) error {
	const q = `DELETE FROM cart WHERE user_id = ?`

	if _, err := r.db.ExecContext(ctx, q, callerID); err != nil {
		return fmt.Errorf("sqlite: clear cart for %q: %w", callerID, err)
	}
	return nil
}

func (r *CartRepo) CountForCaller(ctx context.Context, callerID string) (int, error) {
	const q = `SELECT COUNT(*) FROM cart WHERE user_id = ?`

	var n int
	if err := r.db.QueryRowContext(ctx, q, callerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count cart for %q: %w", callerID, err)
	}
	return n, nil
}
