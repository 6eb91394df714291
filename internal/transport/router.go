package transport

import (
	"net/http"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/middleware"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Sessions   *scs.SessionManager
	Tokens     middleware.TokenParser
	Limiter    *middleware.RateLimiter
	CORSOrigin string
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(opts.CORSOrigin))
	r.Use(opts.Sessions.LoadAndSave)
	r.Use(middleware.Authenticate(opts.Tokens))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.Get("/health", h.Health)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Post("/{id}/subscribe", h.SubscribeRestock)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Put("/{id}/stock", h.SetStock)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddCartItem)
		r.Patch("/items/{id}", h.UpdateCartItem)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/confirm", h.Confirm)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/checkout", h.Checkout)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Get("/me", h.Me)
		r.Put("/me", h.UpdateMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
		r.Get("/metrics/checkout", h.CheckoutMetrics)
	})

	return r
}
