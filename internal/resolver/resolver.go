// Package resolver turns raw user input or a saved record into validated
// loan parameters. Validation returns structured results; deciding whether
// to ask again is left to the caller.
package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"loanschedule/internal/core"
	"loanschedule/internal/store"
)

const (
	FieldSave       = "save"
	FieldPrincipal  = "principal"
	FieldYears      = "years"
	FieldMonths     = "months"
	FieldAnnualRate = "annual_rate"
	// FieldTerm reports problems with years and months combined.
	FieldTerm = "term"
)

// Kind classifies why a value was rejected.
type Kind string

const (
	KindRequired      Kind = "required"
	KindNotYesNo      Kind = "not_yes_no"
	KindNotNumber     Kind = "not_number"
	KindNotInteger    Kind = "not_integer"
	KindNotPositive   Kind = "not_positive"
	KindNegative      Kind = "negative"
	KindOutOfRange    Kind = "out_of_range"
	KindZeroTerm      Kind = "zero_term"
	KindTermTooLong   Kind = "term_too_long"
	KindPaymentTooLow Kind = "payment_too_low"
	KindInvalid       Kind = "invalid"
)

var messages = map[Kind]string{
	KindRequired:      "A value is required.",
	KindNotYesNo:      "Invalid input. Please enter 'yes' or 'no'.",
	KindNotNumber:     "Invalid input. Please enter a number.",
	KindNotInteger:    "Invalid input. Please enter an integer.",
	KindNotPositive:   "Please enter a positive number.",
	KindNegative:      "Please enter a non-negative number.",
	KindOutOfRange:    "Please enter a percentage between 0 and 100.",
	KindZeroTerm:      "The loan term must be at least one month.",
	KindTermTooLong:   fmt.Sprintf("The loan term must be at most %d years.", core.MaxTermMonths/12),
	KindPaymentTooLow: "The loan amount is too small to repay over this term.",
	KindInvalid:       "Invalid input.",
}

// RawInput is a freshly entered loan, every field as typed.
type RawInput struct {
	Save       string `json:"save" validate:"required,yesno"`
	Principal  string `json:"principal" validate:"required,decimal,positive"`
	Years      string `json:"years" validate:"required,integer,nonnegative"`
	Months     string `json:"months" validate:"required,integer,nonnegative"`
	AnnualRate string `json:"annual_rate" validate:"required,decimal,percent"`
}

type FieldError struct {
	Field string
	Kind  Kind
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

// Message is the text shown to the user before asking again.
func (e *FieldError) Message() string {
	if m, ok := messages[e.Kind]; ok {
		return m
	}
	return messages[KindInvalid]
}

// Result is the outcome of Resolve. Params and Save are meaningful only
// when Errors is empty.
type Result struct {
	Params core.LoanParameters
	Save   bool
	Errors []FieldError
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all field errors, or returns nil for a valid result.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i := range r.Errors {
		errs[i] = &r.Errors[i]
	}
	return errors.Join(errs...)
}

// Has reports whether field was rejected.
func (r Result) Has(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Resolve validates every field of in and, when they all pass, derives the
// loan parameters.
func Resolve(in RawInput) Result {
	var res Result

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Result{Errors: []FieldError{{Field: "input", Kind: KindInvalid}}}
		}
		for _, fe := range verrs {
			res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Kind: kindForTag(fe.Tag())})
		}
		return res
	}

	res.Save, _ = parseYesNo(in.Save)

	principal, err := core.ParseMoney(in.Principal)
	if err != nil {
		res.Errors = append(res.Errors, FieldError{Field: FieldPrincipal, Kind: KindNotPositive})
	}
	years, _ := strconv.Atoi(strings.TrimSpace(in.Years))
	months, _ := strconv.Atoi(strings.TrimSpace(in.Months))
	term, err := core.TermMonths(years, months)
	switch {
	case errors.Is(err, core.ErrTermTooLong):
		res.Errors = append(res.Errors, FieldError{Field: FieldTerm, Kind: KindTermTooLong})
	case err != nil:
		res.Errors = append(res.Errors, FieldError{Field: FieldTerm, Kind: KindZeroTerm})
	}
	rate, err := core.ParsePercent(in.AnnualRate)
	if err != nil {
		res.Errors = append(res.Errors, FieldError{Field: FieldAnnualRate, Kind: KindOutOfRange})
	}
	if !res.Valid() {
		return res
	}

	params, err := core.NewLoanParameters(principal, term, rate)
	switch {
	case errors.Is(err, core.ErrPaymentTooLow):
		res.Errors = append(res.Errors, FieldError{Field: FieldPrincipal, Kind: KindPaymentTooLow})
	case err != nil:
		res.Errors = append(res.Errors, FieldError{Field: "input", Kind: KindInvalid})
	default:
		res.Params = params
	}
	return res
}

// FromRecord rebuilds parameters from a saved record. The monthly rate is
// recomputed from the stored percentage; the stored payment is kept as is.
func FromRecord(r store.Record) (core.LoanParameters, error) {
	if err := r.Validate(); err != nil {
		return core.LoanParameters{}, err
	}
	p := core.LoanParameters{
		Principal:         core.MoneyFromDecimal(r.Principal),
		TermMonths:        r.TotalMonths,
		AnnualRatePercent: r.AnnualRatePercent,
		MonthlyRate:       core.MonthlyRateFromAnnual(r.AnnualRatePercent),
		Payment:           core.MoneyFromDecimal(r.MonthlyPayment),
	}
	if err := p.Validate(); err != nil {
		return core.LoanParameters{}, fmt.Errorf("saved loan details: %w", err)
	}
	return p, nil
}
