package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/infra/httpx/middlewares"
)

// The admin routes sit behind RequireAdmin in the router, and the
// services re-check the gate themselves; a caller that somehow reaches a
// service directly is still refused before any write.

// CreateProduct inserts a new catalog record.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProductInput(w, r)
	if !ok {
		return
	}

	callerID := middlewares.CallerID(r.Context())
	p, err := h.catalog.Create(r.Context(), callerID, in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(*p))
}

// UpdateProduct overwrites all mutable fields of a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProductInput(w, r)
	if !ok {
		return
	}

	callerID := middlewares.CallerID(r.Context())
	id := chi.URLParam(r, "id")
	p, err := h.catalog.Update(r.Context(), callerID, id, in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	callerID := middlewares.CallerID(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(r.Context(), callerID, id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAllOrders serves every order with purchaser profile. Admin only.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	callerID := middlewares.CallerID(r.Context())

	orders, err := h.orders.ListAll(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// RequireAdmin denies non-admin callers before any privileged handler
// runs. The gate fails closed, so a failed role lookup also denies.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.gate.IsAdmin(r.Context(), middlewares.CallerID(r.Context())) {
			writeError(w, http.StatusForbidden, "access_denied", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeProductInput parses and normalises the product payload. The
// price travels as a decimal string to avoid float rounding on the wire.
func decodeProductInput(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return catalog.ProductInput{}, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "price must be a decimal number")
		return catalog.ProductInput{}, false
	}

	return catalog.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}, true
}
