package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// powPrecision bounds the digits kept while raising (1 + rate) to the term.
const powPrecision = 32

// DerivePayment returns the level payment that retires principal over
// termMonths periods at monthlyRate, rounded to cents.
//
// A positive rate uses the annuity formula rate*P / (1 - (1+rate)^-n);
// a zero rate spreads the principal evenly.
func DerivePayment(principal Money, termMonths int, monthlyRate decimal.Decimal) (Money, error) {
	if err := principal.Validate(); err != nil {
		return Money{}, err
	}
	if termMonths < 1 {
		return Money{}, fmt.Errorf("%w: %d months", ErrInvalidTerm, termMonths)
	}
	if monthlyRate.IsNegative() {
		return Money{}, fmt.Errorf("%w: negative monthly rate %s", ErrInvalidRate, monthlyRate.String())
	}

	p := principal.Decimal()
	n := decimal.NewFromInt(int64(termMonths))

	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = p.Div(n)
	} else {
		// rate*P / (1 - f^-1) == rate*P*f / (f - 1) with f = (1+rate)^n
		f := powInt(decimal.NewFromInt(1).Add(monthlyRate), termMonths)
		payment = monthlyRate.Mul(p).Mul(f).Div(f.Sub(decimal.NewFromInt(1)))
	}

	m := MoneyFromDecimal(payment)
	if m.Cents <= 0 {
		return Money{}, fmt.Errorf("%w: %s over %d months", ErrPaymentTooLow, principal, termMonths)
	}
	return m, nil
}

// powInt computes base^exp for exp >= 0 by repeated squaring.
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(powPrecision)
		}
		base = base.Mul(base).Round(powPrecision)
		exp >>= 1
	}
	return result
}
