// Package fee computes transaction fees from gas figures and a quote price.
package fee

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimals between wei and the native unit.
const NativeDecimals = 18

var ErrInvalidAmount = errors.New("invalid fee amount")

// Fee is a transaction fee in the native unit and in the quote currency.
type Fee struct {
	Native decimal.Decimal
	Quote  decimal.Decimal
}

// Compute returns gasPrice / 10^18 × gasUsed and that amount × price.
func Compute(gasPrice, gasUsed string, price decimal.Decimal) (Fee, error) {
	gp, err := parseAmount("gas price", gasPrice)
	if err != nil {
		return Fee{}, err
	}
	gu, err := parseAmount("gas used", gasUsed)
	if err != nil {
		return Fee{}, err
	}

	native := gp.Shift(-NativeDecimals).Mul(gu)
	return Fee{Native: native, Quote: native.Mul(price)}, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty %s", ErrInvalidAmount, field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidAmount, field, s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: negative %s %q", ErrInvalidAmount, field, s)
	}
	return d, nil
}
