package transport

import (
	"net/http"

	"sportshop-be/internal/product"

	"github.com/shopspring/decimal"
)

type productView struct {
	product.Product
	Quote product.Quote `json:"quote"`
}

func viewOf(p product.Product) productView {
	return productView{Product: p, Quote: p.Quote()}
}

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
}

type setStockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = viewOf(p)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(*p))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	p, err := h.Products.Create(r.Context(), product.NewProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewOf(*p))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	p, err := h.Products.Update(r.Context(), product.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(*p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.Products.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req setStockRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	p, err := h.Products.SetStock(r.Context(), id, *req.Stock)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(*p))
}

func (h *Handler) SubscribeRestock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req subscribeRequest
	if err := h.requests.decode(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.Restock.Subscribe(r.Context(), id, req.Email); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
