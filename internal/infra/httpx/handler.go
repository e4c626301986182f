// Package httpx is the HTTP transport of the storefront: routing, DTO
// mapping, and the translation of domain errors into status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jcmexdev/storefront/internal/auth"
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/checkout"
	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
	"github.com/jcmexdev/storefront/internal/order"
)

// Handler carries the storefront services. One instance serves all
// routes; per-request state lives in the request context only.
type Handler struct {
	catalog  *catalog.Service
	carts    *cart.Service
	checkout *checkout.Workflow
	orders   *order.Service
	gate     *auth.Gate
}

func NewHandler(
	catalogSvc *catalog.Service,
	cartSvc *cart.Service,
	checkoutWf *checkout.Workflow,
	orderSvc *order.Service,
	gate *auth.Gate,
) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		carts:    cartSvc,
		checkout: checkoutWf,
		orders:   orderSvc,
		gate:     gate,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// writeDomainError maps domain failures onto the API's error taxonomy.
// Store errors come back as a generic retryable 502: the caller can try
// again, and the detail stays in the logs.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ferr *entity.FieldError
	if errors.As(err, &ferr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Field:   ferr.Field,
			Message: ferr.Message,
		})
		return
	}

	var pce *checkout.PartialCommitError
	if errors.As(err, &pce) {
		slog.ErrorContext(r.Context(), "order incompletely committed",
			"order_id", pce.OrderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "order_incomplete",
			OrderID: pce.OrderID,
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusConflict, "empty_cart", "your cart is empty")
	case errors.Is(err, auth.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access_denied", "")
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	default:
		slog.ErrorContext(r.Context(), "store call failed", "error", err)
		writeError(w, http.StatusBadGateway, "store_error", "temporary failure, retry")
	}
}

func cartTotal(lines []entity.CartLine) string {
	return cart.Total(lines).String()
}

func mapProduct(p entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapOrder(o entity.Order) OrderResponse {
	out := OrderResponse{
		ID:        o.ID,
		Total:     o.Total.String(),
		Status:    o.Status,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		Lines:     make([]OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.String(),
		})
	}
	if o.Profile != nil {
		out.Purchaser = &PurchaserResponse{Name: o.Profile.Name, Email: o.Profile.Email}
	}
	return out
}
