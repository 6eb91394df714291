package transport

import (
	"net/http"

	"sportshop-be/internal/middleware"
	"sportshop-be/internal/order"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	o, remaining, err := h.Orders.Checkout(ctx, middleware.UserIDFrom(ctx), h.loadCart(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.CartStore.Save(ctx, remaining); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListByUser(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	caller, _ := middleware.IdentityFrom(r.Context())
	o, err := h.Orders.Get(r.Context(), caller.UserID, id, caller.IsAdmin())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
