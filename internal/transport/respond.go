package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"sportshop-be/internal/cart"
	"sportshop-be/internal/logger"
	"sportshop-be/internal/order"
	"sportshop-be/internal/product"
	"sportshop-be/internal/restock"
	"sportshop-be/internal/user"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{product.ErrNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{order.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
	{user.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},

	{cart.ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
	{restock.ErrAlreadyAvailable, http.StatusConflict, "IN_STOCK"},
	{user.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS"},
	{order.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},

	{order.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
	{order.ErrInvalidStatus, http.StatusUnprocessableEntity, "INVALID_STATUS"},
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity, "INVALID_QUANTITY"},
	{cart.ErrInvalidAction, http.StatusUnprocessableEntity, "INVALID_ACTION"},
	{product.ErrInvalidName, http.StatusUnprocessableEntity, "INVALID_NAME"},
	{product.ErrInvalidPrice, http.StatusUnprocessableEntity, "INVALID_PRICE"},
	{product.ErrInvalidStock, http.StatusUnprocessableEntity, "INVALID_STOCK"},
	{product.ErrNothingToEdit, http.StatusUnprocessableEntity, "NOTHING_TO_EDIT"},
	{user.ErrNothingToEdit, http.StatusUnprocessableEntity, "NOTHING_TO_EDIT"},
	{user.ErrInvalidCode, http.StatusUnprocessableEntity, "INVALID_CODE"},
	{restock.ErrInvalidEmail, http.StatusUnprocessableEntity, "INVALID_EMAIL"},

	{order.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{order.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrNotConfirmed, http.StatusForbidden, "EMAIL_NOT_CONFIRMED"},

	{order.ErrCommitFailed, http.StatusInternalServerError, "COMMIT_FAILED"},
}

// respondServiceError maps domain errors onto HTTP responses. Unknown errors
// are logged and reported as 500 without leaking their text.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *cart.InsufficientStockError
	if errors.As(err, &insufficient) {
		respondError(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), insufficient)
		return
	}

	var invalid *order.ValidationError
	if errors.As(err, &invalid) {
		respondError(w, http.StatusConflict, "VALIDATION_FAILED", "some cart lines cannot be fulfilled", invalid.Lines)
		return
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", reqErr.Error(), reqErr.Fields)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
			}
			respondError(w, m.status, m.code, m.err.Error(), nil)
			return
		}
	}

	logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
