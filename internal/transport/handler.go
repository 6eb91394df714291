package transport

import (
	"context"
	"net/http"
	"strconv"

	"sportshop-be/internal/cart"
	"sportshop-be/internal/metrics"
	"sportshop-be/internal/order"
	"sportshop-be/internal/product"
	"sportshop-be/internal/restock"
	"sportshop-be/internal/user"

	"github.com/go-chi/chi/v5"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the services the HTTP API is built on. DB may be nil.
type Deps struct {
	Products  product.Service
	Carts     cart.Service
	CartStore *cart.SessionStore
	Orders    order.Service
	Restock   restock.Service
	Users     user.Service
	Stats     *metrics.Checkout
	DB        Pinger
}

type Handler struct {
	Deps
	requests *requestValidator
}

func NewHandler(deps Deps) *Handler {
	if deps.Stats == nil {
		deps.Stats = &metrics.Checkout{}
	}
	return &Handler{Deps: deps, requests: newRequestValidator()}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &RequestError{Message: "invalid " + name}
	}
	return id, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable", nil)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CheckoutMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Stats.Snapshot())
}
