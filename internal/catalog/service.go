// Package catalog owns the product records and their admin-gated
// mutations.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/auth"
	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// adminGate is what the service needs from the authorization gate.
type adminGate interface {
	IsAdmin(ctx context.Context, callerID string) bool
}

// ProductInput carries the validated fields of a create or update.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

// Validate checks the structural rules and reports the first failing
// field. It never partially applies: callers write only on nil.
func (in ProductInput) Validate() *entity.FieldError {
	if n := utf8.RuneCountInString(in.Name); n < 2 || n > 100 {
		return &entity.FieldError{Field: "name", Message: "name must be 2-100 characters"}
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		return &entity.FieldError{Field: "description", Message: "description must be at most 500 characters"}
	}
	if in.Price.IsNegative() {
		return &entity.FieldError{Field: "price", Message: "price must be non-negative"}
	}
	if in.Stock < 0 {
		return &entity.FieldError{Field: "stock", Message: "stock must be a non-negative integer"}
	}
	if in.ImageURL != "" {
		u, err := url.Parse(in.ImageURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &entity.FieldError{Field: "image_url", Message: "image URL must be empty or a valid URL"}
		}
	}
	return nil
}

type Service struct {
	products ports.ProductRepository
	gate     adminGate
}

func NewService(products ports.ProductRepository, gate adminGate) *Service {
	return &Service{products: products, gate: gate}
}

// List returns the catalog, newest first. Public: no gate.
func (s *Service) List(ctx context.Context) ([]entity.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Create validates and inserts a product. The gate is re-checked here
// even though the admin HTTP surface already gates, because the service
// can be reached without going through that surface.
func (s *Service) Create(ctx context.Context, callerID string, in ProductInput) (*entity.Product, error) {
	if !s.gate.IsAdmin(ctx, callerID) {
		return nil, auth.ErrAccessDenied
	}
	if ferr := in.Validate(); ferr != nil {
		return nil, ferr
	}

	p := &entity.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update validates and overwrites all mutable fields of an existing
// product. A validation failure writes nothing.
func (s *Service) Update(ctx context.Context, callerID, id string, in ProductInput) (*entity.Product, error) {
	if !s.gate.IsAdmin(ctx, callerID) {
		return nil, auth.ErrAccessDenied
	}
	if ferr := in.Validate(); ferr != nil {
		return nil, ferr
	}

	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.ImageURL = in.ImageURL

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if !s.gate.IsAdmin(ctx, callerID) {
		return auth.ErrAccessDenied
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}
