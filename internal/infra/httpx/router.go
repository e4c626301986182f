package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront/internal/core/ports"
	"github.com/jcmexdev/storefront/internal/infra/httpx/middlewares"
)

// NewRouter wires the storefront routes. The catalog listing is public;
// everything else requires a live session, and the /admin subtree
// additionally requires the admin role.
func NewRouter(handler *Handler, sessions ports.SessionResolver) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/products", handler.ListProducts)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.SessionAuth(sessions))
		r.Use(middlewares.AttachIdempotencyKey)

		r.Get("/cart", handler.GetCart)
		r.Post("/cart/items", handler.AddCartItem)
		r.Patch("/cart/items/{id}", handler.SetCartQuantity)
		r.Delete("/cart/items/{id}", handler.RemoveCartItem)

		r.Post("/checkout", handler.Checkout)
		r.Get("/orders", handler.ListOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Use(handler.RequireAdmin)

			r.Get("/orders", handler.ListAllOrders)
			r.Post("/products", handler.CreateProduct)
			r.Put("/products/{id}", handler.UpdateProduct)
			r.Delete("/products/{id}", handler.DeleteProduct)
		})
	})

	// otelhttp wraps the whole router so every request gets a server span
	// the checkout log and slog records can join on.
	return otelhttp.NewHandler(r, "storefront")
}
