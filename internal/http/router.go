package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	CartHandler     *CartHandler
	CatalogHandler  *CatalogHandler
	CheckoutHandler *CheckoutHandler
	WebhookHandler  *WebhookHandler
	RequestTimeout  time.Duration
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", cfg.CatalogHandler.ListEvents)
		r.Get("/events/{event_id}/photos", cfg.CatalogHandler.ListEventPhotos)
		r.Get("/discounts", cfg.CatalogHandler.ListDiscounts)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.CartHandler.GetCart)
				r.Post("/toggle", cfg.CartHandler.ToggleItem)
				r.Delete("/items/{photo_id}", cfg.CartHandler.RemoveItem)
				r.Delete("/", cfg.CartHandler.ClearCart)
			})

			r.Post("/checkout", cfg.CheckoutHandler.Checkout)
		})

		r.Get("/orders/{order_id}", cfg.CheckoutHandler.GetOrder)

		// Provider callbacks carry no session.
		r.Post("/webhooks/{provider}", cfg.WebhookHandler.Handle)
	})

	return r
}
