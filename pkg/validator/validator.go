package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Decimal input limits. Anything past them is far outside every numeric
// column, and arithmetic on it (rescaling to a huge exponent) can take
// unbounded time, so it is refused before any comparison runs.
const (
	MaxDecimalText = 40
	maxExponent    = 30
	maxCoeffBits   = 160
)

var ErrDecimalRange = errors.New("number out of range")

type ErrorResponse struct {
	FailedField string `json:"failed_field"`
	Tag         string `json:"tag"`
	Value       string `json:"value"`
}

func (e *ErrorResponse) String() string {
	return fmt.Sprintf("field '%s' failed on tag '%s'", e.FailedField, e.Tag)
}

var validate = validator.New()

func init() {
	// nonneg_decimal: string field holding a bounded decimal number >= 0
	validate.RegisterValidation("nonneg_decimal", func(fl validator.FieldLevel) bool {
		d, err := ParseDecimal(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	// decimal.Decimal fields validate as float64, so gt/gte/lt/lte tags apply.
	// Unbounded values become NaN and fail every comparison.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			if !Bounded(d) {
				return math.NaN()
			}
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
}

// Bounded reports whether d is small enough in exponent and digits for
// cheap arithmetic. It never rescales d.
func Bounded(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent && d.Coefficient().BitLen() <= maxCoeffBits
}

// ParseDecimal parses operator input, refusing overlong text and values
// that are not Bounded.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > MaxDecimalText {
		return decimal.Zero, ErrDecimalRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !Bounded(d) {
		return decimal.Zero, ErrDecimalRange
	}
	return d, nil
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
