package product

import "errors"

var (
	ErrNotFound      = errors.New("product not found")
	ErrInvalidName   = errors.New("product name cannot be empty")
	ErrInvalidPrice  = errors.New("product price must not be negative")
	ErrInvalidStock  = errors.New("product stock must not be negative")
	ErrNothingToEdit = errors.New("no fields to update")
)
