package service

import (
	"errors"
	"fmt"

	pkgvalidator "go-pos-billing/pkg/validator"
)

// Error taxonomy shared by the catalog, cart and billing services. Callers
// match with errors.Is; messages carry the offending id or field.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyBill         = errors.New("no items to bill")
	ErrProductInUse      = errors.New("product is referenced by bills")
)

func validationError(errs []*pkgvalidator.ErrorResponse) error {
	first := errs[0]
	return fmt.Errorf("%w: %s", ErrValidation, first.String())
}
