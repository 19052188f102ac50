package service

import (
	"errors"
	"math"

	"go-pos-farmstall/internal/repository"
)

// Domain errors surfaced to handlers. Handlers translate these to HTTP
// statuses; anything else is reported as a generic failure so storage
// internals never leak to callers.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateName       = errors.New("product name exists")
	ErrDuplicateBarcode    = errors.New("barcode exists")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrEmptyCart           = errors.New("empty cart")
	ErrProductReferenced   = errors.New("product is referenced by recorded transactions")
	ErrBarcodeExhausted    = errors.New("could not generate a unique barcode")

	// Checkout re-exports the repository sentinel so callers only need the
	// service package to classify failures.
	ErrInsufficientStock = repository.ErrInsufficientStock
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
