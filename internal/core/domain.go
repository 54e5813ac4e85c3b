package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	RoundedCarry CarryPolicy = "rounded"
	ExactCarry   CarryPolicy = "exact"
)

// MaxAnnualRatePercent is the highest accepted annual rate.
const MaxAnnualRatePercent = 100

// MaxTermMonths is the longest accepted term, 100 years.
const MaxTermMonths = 1200

type (
	// CarryPolicy controls the precision of the balance handed from one
	// period to the next.
	CarryPolicy string

	Money struct {
		Cents int64
	}

	// LoanParameters is the resolved input of a schedule. Build it with
	// NewLoanParameters; it is not modified afterwards.
	LoanParameters struct {
		Principal         Money
		TermMonths        int
		AnnualRatePercent decimal.Decimal
		MonthlyRate       decimal.Decimal
		Payment           Money
	}

	// ScheduleRow is one period of the repayment schedule.
	ScheduleRow struct {
		Period           int
		BeginningBalance Money
		Payment          Money
		Interest         Money
		Principal        Money
		EndingBalance    Money
	}

	Schedule struct {
		Params LoanParameters
		Rows   []ScheduleRow
	}

	// Summary aggregates a schedule.
	Summary struct {
		TotalPaid      Money
		TotalInterest  Money
		TotalPrincipal Money
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidTerm    = errors.New("invalid term")
	ErrTermTooLong    = fmt.Errorf("%w: longer than %d months", ErrInvalidTerm, MaxTermMonths)
	ErrInvalidRate    = errors.New("invalid rate")
	ErrPaymentTooLow  = errors.New("payment rounds to zero")
	ErrInvalidPolicy  = errors.New("invalid carry policy")
	ErrInvalidPercent = errors.New("invalid percentage")
)

func (p CarryPolicy) IsValid() bool {
	switch p {
	case RoundedCarry, ExactCarry:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MonthlyRateFromAnnual converts an annual percentage to the periodic rate
// applied each month (annual / 100 / 12).
func MonthlyRateFromAnnual(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
}

// TermMonths combines a years and a months component into a total number of
// periods. Both parts must be non-negative and the total must be between one
// and MaxTermMonths.
func TermMonths(years, months int) (int, error) {
	if years < 0 || months < 0 {
		return 0, ErrInvalidTerm
	}
	// Checked per part first so years*12 cannot overflow.
	if years > MaxTermMonths/12 || months > MaxTermMonths {
		return 0, ErrTermTooLong
	}
	total := years*12 + months
	if total < 1 {
		return 0, fmt.Errorf("%w: total term must be at least one month", ErrInvalidTerm)
	}
	if err := validateTerm(total); err != nil {
		return 0, err
	}
	return total, nil
}

func validateTerm(termMonths int) error {
	if termMonths < 1 {
		return ErrInvalidTerm
	}
	if termMonths > MaxTermMonths {
		return ErrTermTooLong
	}
	return nil
}

func validateAnnualRate(annualPercent decimal.Decimal) error {
	if annualPercent.IsNegative() || annualPercent.GreaterThan(decimal.NewFromInt(MaxAnnualRatePercent)) {
		return fmt.Errorf("%w: %s%% is outside [0, %d]", ErrInvalidRate, annualPercent.String(), MaxAnnualRatePercent)
	}
	return nil
}

// NewLoanParameters validates the inputs, derives the monthly rate and the
// level payment.
func NewLoanParameters(principal Money, termMonths int, annualPercent decimal.Decimal) (LoanParameters, error) {
	if err := principal.Validate(); err != nil {
		return LoanParameters{}, err
	}
	if err := validateTerm(termMonths); err != nil {
		return LoanParameters{}, err
	}
	if err := validateAnnualRate(annualPercent); err != nil {
		return LoanParameters{}, err
	}

	rate := MonthlyRateFromAnnual(annualPercent)
	payment, err := DerivePayment(principal, termMonths, rate)
	if err != nil {
		return LoanParameters{}, err
	}

	return LoanParameters{
		Principal:         principal,
		TermMonths:        termMonths,
		AnnualRatePercent: annualPercent,
		MonthlyRate:       rate,
		Payment:           payment,
	}, nil
}

// Validate checks the invariants of a parameter set built outside
// NewLoanParameters, e.g. one reloaded from storage.
func (p LoanParameters) Validate() error {
	if err := p.Principal.Validate(); err != nil {
		return err
	}
	if err := validateTerm(p.TermMonths); err != nil {
		return err
	}
	if err := validateAnnualRate(p.AnnualRatePercent); err != nil {
		return err
	}
	if p.MonthlyRate.IsNegative() {
		return ErrInvalidRate
	}
	if p.Payment.Cents <= 0 {
		return ErrPaymentTooLow
	}
	return nil
}
