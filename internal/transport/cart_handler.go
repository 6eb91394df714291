package transport

import (
	"net/http"

	"sportshop-be/internal/cart"
	"sportshop-be/internal/logger"

	"go.uber.org/zap"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

type updateItemRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease remove"`
}

// loadCart falls back to an empty cart when the session payload is unreadable.
func (h *Handler) loadCart(r *http.Request) cart.Cart {
	c, err := h.CartStore.Load(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Warn("discarding unreadable session cart", zap.Error(err))
	}
	return c
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, status int, c cart.Cart) {
	sum, err := h.Carts.Summary(r.Context(), c)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, status, sum)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK, h.loadCart(r))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.Carts.Add(r.Context(), h.loadCart(r), req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.CartStore.Save(r.Context(), c); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusCreated, c)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req updateItemRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	c, err := h.Carts.Update(r.Context(), h.loadCart(r), id, cart.Action(req.Action))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.CartStore.Save(r.Context(), c); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK, c)
}
