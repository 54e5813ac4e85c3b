// Package store defines the persisted loan record and the port every
// persistence backend implements.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"loanschedule/internal/core"
)

// RecordKey is the fixed logical name the loan record is saved under.
const RecordKey = "loan_details"

var ErrNotFound = errors.New("no saved loan details")

// Record is the persisted shape of a loan. Only the inputs and the rounded
// payment are kept; the monthly rate is recomputed from the percentage on
// reload. JSON keys match the saved loan_details.json file.
type Record struct {
	Principal         decimal.Decimal `json:"Loan Amount"`
	TotalMonths       int             `json:"Total Months"`
	AnnualRatePercent decimal.Decimal `json:"Annual Interest Rate"`
	MonthlyPayment    decimal.Decimal `json:"Monthly Payment"`
}

// RecordFromParams captures the persisted fields of p.
func RecordFromParams(p core.LoanParameters) Record {
	return Record{
		Principal:         p.Principal.Decimal(),
		TotalMonths:       p.TermMonths,
		AnnualRatePercent: p.AnnualRatePercent,
		MonthlyPayment:    p.Payment.Decimal(),
	}
}

// MarshalJSON writes the amounts as plain JSON numbers, the format of the
// original loan_details.json, instead of decimal's quoted strings.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Principal         json.Number `json:"Loan Amount"`
		TotalMonths       int         `json:"Total Months"`
		AnnualRatePercent json.Number `json:"Annual Interest Rate"`
		MonthlyPayment    json.Number `json:"Monthly Payment"`
	}{
		Principal:         json.Number(r.Principal.String()),
		TotalMonths:       r.TotalMonths,
		AnnualRatePercent: json.Number(r.AnnualRatePercent.String()),
		MonthlyPayment:    json.Number(r.MonthlyPayment.String()),
	})
}

// Validate checks a record read back from a backend.
func (r Record) Validate() error {
	if !r.Principal.IsPositive() {
		return fmt.Errorf("record %s: %w", RecordKey, core.ErrInvalidAmount)
	}
	if r.TotalMonths < 1 || r.TotalMonths > core.MaxTermMonths {
		return fmt.Errorf("record %s: %w", RecordKey, core.ErrInvalidTerm)
	}
	if r.AnnualRatePercent.IsNegative() || r.AnnualRatePercent.GreaterThan(decimal.NewFromInt(core.MaxAnnualRatePercent)) {
		return fmt.Errorf("record %s: %w", RecordKey, core.ErrInvalidRate)
	}
	if !r.MonthlyPayment.IsPositive() {
		return fmt.Errorf("record %s: %w", RecordKey, core.ErrPaymentTooLow)
	}
	return nil
}

// Store persists the loan record together with the schedule generated
// from it.
type Store interface {
	Save(ctx context.Context, r Record, s core.Schedule) error
	// Load returns ErrNotFound when nothing was saved.
	Load(ctx context.Context) (Record, error)
	Close() error
}

// RowLoader is implemented by backends that keep the generated rows next to
// the record.
type RowLoader interface {
	LoadRows(ctx context.Context) ([]core.ScheduleRow, error)
}
