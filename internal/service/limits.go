package service

import (
	"fmt"

	"go-pos-billing/internal/model"
	"go-pos-billing/pkg/validator"

	"github.com/shopspring/decimal"
)

// Column limits: quantities and stock are decimal(12,3), money is
// decimal(12,2), percentages decimal(5,2).
const (
	quantityPlaces = 3
	moneyPlaces    = 2
)

var (
	maxQuantity = decimal.New(1, 9)
	maxMoney    = decimal.New(1, 10)
)

// fitsPlaces reports whether d has no more than places decimal digits
func fitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// checkLine validates one requested bill or cart line. Quantity must be
// above zero, below maxQuantity, with at most three decimals.
func checkLine(line model.BillLine) error {
	if errs := validator.ValidateStruct(&line); len(errs) > 0 {
		return validationError(errs)
	}
	if !fitsPlaces(line.Quantity, quantityPlaces) {
		return fmt.Errorf("%w: quantity %s has more than %d decimal places", ErrValidation, line.Quantity, quantityPlaces)
	}
	return nil
}

func checkDiscount(percent *decimal.Decimal) error {
	if percent == nil {
		return nil
	}
	if !validator.Bounded(*percent) || percent.IsNegative() || percent.GreaterThan(hundred) {
		// the value itself is not echoed; an unbounded one may not print cheaply
		return fmt.Errorf("%w: discount percent outside 0-100", ErrValidation)
	}
	if !fitsPlaces(*percent, moneyPlaces) {
		return fmt.Errorf("%w: discount percent %s has more than %d decimal places", ErrValidation, percent, moneyPlaces)
	}
	return nil
}

func checkStock(stock decimal.Decimal) error {
	if stock.GreaterThanOrEqual(maxQuantity) {
		return fmt.Errorf("%w: stock must be below %s", ErrValidation, maxQuantity)
	}
	if !fitsPlaces(stock, quantityPlaces) {
		return fmt.Errorf("%w: stock %s has more than %d decimal places", ErrValidation, stock, quantityPlaces)
	}
	return nil
}

func checkMoney(field string, amount decimal.Decimal) error {
	if amount.GreaterThanOrEqual(maxMoney) {
		return fmt.Errorf("%w: %s must be below %s", ErrValidation, field, maxMoney)
	}
	return nil
}
