package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// exactCarryPlaces bounds the carried balance under ExactCarry so that the
// number of digits does not grow with every period.
const exactCarryPlaces = 16

type scheduleOptions struct {
	policy CarryPolicy
}

// ScheduleOption configures GenerateSchedule.
type ScheduleOption func(*scheduleOptions)

// WithCarryPolicy selects how the balance is carried between periods.
// The default is RoundedCarry.
func WithCarryPolicy(p CarryPolicy) ScheduleOption {
	return func(o *scheduleOptions) {
		o.policy = p
	}
}

// GenerateSchedule produces one row per period, 1..TermMonths.
//
// Every period uses the same nominal payment. The last period's principal
// absorbs the residue left by rounding the payment, so the final ending
// balance is always exactly zero. Either the full schedule or an error is
// returned.
func GenerateSchedule(params LoanParameters, opts ...ScheduleOption) (Schedule, error) {
	o := scheduleOptions{policy: RoundedCarry}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.policy.IsValid() {
		return Schedule{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, o.policy)
	}
	if err := params.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("generate schedule: %w", err)
	}

	payment := params.Payment.Decimal()
	balance := params.Principal.Decimal()
	rows := make([]ScheduleRow, 0, params.TermMonths)

	for period := 1; period <= params.TermMonths; period++ {
		begin := balance
		interest := begin.Mul(params.MonthlyRate)
		if o.policy == RoundedCarry {
			interest = interest.Round(2)
		}
		principal := payment.Sub(interest)
		end := begin.Sub(principal)

		if period == params.TermMonths {
			principal = principal.Add(end)
			end = decimal.Zero
		}

		rows = append(rows, ScheduleRow{
			Period:           period,
			BeginningBalance: MoneyFromDecimal(begin),
			Payment:          params.Payment,
			Interest:         MoneyFromDecimal(interest),
			Principal:        MoneyFromDecimal(principal),
			EndingBalance:    MoneyFromDecimal(end),
		})

		if o.policy == RoundedCarry {
			balance = end.Round(2)
		} else {
			balance = end.Round(exactCarryPlaces)
		}
	}

	return Schedule{Params: params, Rows: rows}, nil
}

// Totals sums the payment, interest and principal columns.
func (s Schedule) Totals() Summary {
	var sum Summary
	for _, r := range s.Rows {
		sum.TotalInterest = sum.TotalInterest.Add(r.Interest)
		sum.TotalPrincipal = sum.TotalPrincipal.Add(r.Principal)
	}
	sum.TotalPaid = sum.TotalInterest.Add(sum.TotalPrincipal)
	return sum
}

// Last returns the final row, or false for an empty schedule.
func (s Schedule) Last() (ScheduleRow, bool) {
	if len(s.Rows) == 0 {
		return ScheduleRow{}, false
	}
	return s.Rows[len(s.Rows)-1], true
}
