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

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	db *sql.DB
}

const productColumns = "id, name, description, price, stock, image_url, created_at"

func (r *ProductRepo) List(ctx context.Context) ([]entity.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*entity.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: product %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	const q = `
		INSERT INTO products (id, name, description, price, stock, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.Price.String(), p.Stock, p.ImageURL, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create product %q: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	const q = `
		UPDATE products
		SET    name = ?, description = ?, price = ?, stock = ?, image_url = ?
		WHERE  id = ?`

	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Price.String(), p.Stock, p.ImageURL, p.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update product %q: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: product %q: %w", p.ID, ports.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM products WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("sqlite: delete product %q: %w", id, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*entity.Product, error) {
	var (
		p         entity.Product
		price     string
		createdAt string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.ImageURL, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scan product: %w", err)
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("sqlite: product %q price %q: %w", p.ID, price, err)
	}
	if p.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}
