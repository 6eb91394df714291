package restock

import "errors"

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrAlreadyAvailable = errors.New("product is in stock")
)
