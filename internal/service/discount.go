package service

import (
	"strings"

	"go-pos-billing/pkg/validator"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountPolicy is the automatic discount tier: AutoPercent off when the
// subtotal is strictly above Threshold. A manual discount always wins.
type DiscountPolicy struct {
	Threshold   decimal.Decimal
	AutoPercent decimal.Decimal
}

// Resolve returns the discount percent to apply to subtotal
func (p DiscountPolicy) Resolve(subtotal decimal.Decimal, manual *decimal.Decimal) decimal.Decimal {
	if manual != nil {
		return *manual
	}
	if p.AutoPercent.IsPositive() && subtotal.GreaterThan(p.Threshold) {
		return p.AutoPercent
	}
	return decimal.Zero
}

// Totals are the money figures stored on a bill
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals applies percent to subtotal. Money is rounded to 2 places,
// half away from zero (half-up for the non-negative amounts billed here).
func ComputeTotals(subtotal, percent decimal.Decimal) Totals {
	subtotal = RoundMoney(subtotal)
	discount := RoundMoney(subtotal.Mul(percent).Div(hundred))
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          RoundMoney(subtotal.Sub(discount)),
	}
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseDiscount reads a manual discount typed by an operator. Blank,
// overlong or non-numeric input yields nil so the caller keeps its prior
// value. Numbers outside 0-100 are returned as is for CreateBill to reject.
func ParseDiscount(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if len(raw) > validator.MaxDecimalText {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}
