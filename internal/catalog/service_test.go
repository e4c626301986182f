package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/auth"
	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

type fakeProductRepo struct {
	products map[string]*entity.Product
	writes   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (f *fakeProductRepo) List(context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) Get(_ context.Context, id string) (*entity.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	f.writes++
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	f.writes++
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	f.writes++
	delete(f.products, id)
	return nil
}

type fixedGate bool

func (g fixedGate) IsAdmin(context.Context, string) bool { return bool(g) }

func validInput() ProductInput {
	return ProductInput{
		Name:        "Widget",
		Description: "A perfectly ordinary widget.",
		Price:       decimal.RequireFromString("9.99"),
		Stock:       10,
		ImageURL:    "https://cdn.example.com/widget.png",
	}
}

func TestCreateRefusedForNonAdmin(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, fixedGate(false))

	_, err := svc.Create(context.Background(), "u1", validInput())
	require.ErrorIs(t, err, auth.ErrAccessDenied)
	require.Zero(t, repo.writes, "a denied caller must not reach the store")
}

func TestCreate(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, fixedGate(true))

	p, err := svc.Create(context.Background(), "admin", validInput())
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "Widget", p.Name)
	require.True(t, p.Price.Equal(decimal.RequireFromString("9.99")))
	require.Contains(t, repo.products, p.ID)
}

func TestCreateInvalidInputWritesNothing(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, fixedGate(true))

	in := validInput()
	in.Name = "X"

	_, err := svc.Create(context.Background(), "admin", in)

	var ferr *entity.FieldError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "name", ferr.Field)
	require.Zero(t, repo.writes)
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &entity.Product{
		ID: "p1", Name: "Old", Description: "old", Stock: 1,
		Price: decimal.RequireFromString("1.00"),
	}
	svc := NewService(repo, fixedGate(true))

	in := validInput()
	in.Description = "" // cleared fields are cleared, not kept

	p, err := svc.Update(context.Background(), "admin", "p1", in)
	require.NoError(t, err)
	require.Equal(t, "Widget", p.Name)
	require.Empty(t, p.Description)
	require.Equal(t, 10, p.Stock)
	require.Empty(t, repo.products["p1"].Description)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewService(newFakeProductRepo(), fixedGate(true))

	_, err := svc.Update(context.Background(), "admin", "nope", validInput())
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteRefusedForNonAdmin(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &entity.Product{ID: "p1", Name: "Widget"}
	svc := NewService(repo, fixedGate(false))

	require.ErrorIs(t, svc.Delete(context.Background(), "u1", "p1"), auth.ErrAccessDenied)
	require.Contains(t, repo.products, "p1")
}

func TestDelete(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &entity.Product{ID: "p1", Name: "Widget"}
	svc := NewService(repo, fixedGate(true))

	require.NoError(t, svc.Delete(context.Background(), "admin", "p1"))
	require.NotContains(t, repo.products, "p1")
}

func TestProductInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		field  string
	}{
		{"one-rune name", func(in *ProductInput) { in.Name = "X" }, "name"},
		{"101-rune name", func(in *ProductInput) { in.Name = strings.Repeat("x", 101) }, "name"},
		{"501-rune description", func(in *ProductInput) { in.Description = strings.Repeat("d", 501) }, "description"},
		{"negative price", func(in *ProductInput) { in.Price = decimal.RequireFromString("-0.01") }, "price"},
		{"negative stock", func(in *ProductInput) { in.Stock = -1 }, "stock"},
		{"relative image URL", func(in *ProductInput) { in.ImageURL = "/images/widget.png" }, "image_url"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			ferr := in.Validate()
			require.NotNil(t, ferr)
			require.Equal(t, tc.field, ferr.Field)
		})
	}
}

func TestProductInputValidateBoundaries(t *testing.T) {
	in := validInput()
	in.Name = strings.Repeat("x", 100)
	in.Description = strings.Repeat("d", 500)
	in.Price = decimal.Zero
	in.Stock = 0
	in.ImageURL = "" // optional

	require.Nil(t, in.Validate())
}
