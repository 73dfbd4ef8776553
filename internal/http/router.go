package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires all routes. Catalog reads are public; everything that
// acts on behalf of a user sits behind the auth middleware.
func NewRouter(
	cart *CartHandler,
	orders *OrderHandler,
	products *ProductHandler,
	auth func(http.Handler) http.Handler,
	requestTimeout time.Duration,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.ListProducts)
		r.Get("/products/{product_id}", products.GetProduct)
		r.Get("/products/slug/{slug}", products.GetProductBySlug)
		r.Get("/categories", products.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Post("/products/{product_id}/rating", products.RateProduct)
			r.Delete("/products/{product_id}/rating", products.DeleteRating)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.GetCart)
				r.Delete("/", cart.ClearCart)
				r.Post("/items", cart.AddItem)
				r.Delete("/items/{product_id}", cart.RemoveItem)
				r.Post("/items/{product_id}/decrease", cart.DecreaseQuantity)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/checkout", orders.Checkout)
				r.Get("/", orders.ListOrders)
				r.Get("/pending", orders.ListPendingOrders)
				r.Get("/{order_id}", orders.GetOrder)
				r.Put("/{order_id}/complete", orders.CompleteOrder)
				r.Put("/{order_id}/cancel", orders.CancelOrder)
			})

			r.Get("/admin/orders", orders.ListAllOrders)
		})
	})

	return r
}
