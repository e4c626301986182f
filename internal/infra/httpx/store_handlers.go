package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront/internal/checkout"
	"github.com/jcmexdev/storefront/internal/infra/httpx/middlewares"
)

// ListProducts serves the public catalog, newest first.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCart returns the caller's cart lines with the display-time total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	callerID := middlewares.CallerID(r.Context())

	lines, err := h.carts.Load(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := CartResponse{
		Lines: make([]CartLineResponse, 0, len(lines)),
		Total: cartTotal(lines),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.Product.Name,
			UnitPrice:   l.Product.Price.String(),
			Quantity:    l.Quantity,
			ImageURL:    l.Product.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// AddCartItem adds a product to the caller's cart, incrementing the
// existing line when the product is already there.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	callerID := middlewares.CallerID(r.Context())
	if err := h.carts.AddProduct(r.Context(), callerID, req.ProductID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCartQuantity updates one line's quantity. Quantities below 1 are a
// deliberate no-op; removal is a separate call.
func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	callerID := middlewares.CallerID(r.Context())
	lineID := chi.URLParam(r, "id")
	if err := h.carts.SetQuantity(r.Context(), callerID, lineID, req.Quantity); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveCartItem deletes one line; removing an already-gone line is fine.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	callerID := middlewares.CallerID(r.Context())
	lineID := chi.URLParam(r, "id")
	if err := h.carts.Remove(r.Context(), callerID, lineID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout validates the submitted form and places the order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	form := checkout.Form{
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		CardNumber: req.CardNumber,
		CardName:   req.CardName,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
	}

	callerID := middlewares.CallerID(r.Context())
	idemKey := middlewares.IdempotencyKey(r.Context())

	placed, err := h.checkout.Place(r.Context(), callerID, idemKey, form)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(*placed))
}

// ListOrders serves the caller's own order history.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	callerID := middlewares.CallerID(r.Context())

	orders, err := h.orders.HistoryForCaller(r.Context(), callerID)
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
