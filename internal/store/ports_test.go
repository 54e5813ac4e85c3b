package store

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"loanschedule/internal/core"
)

func TestRecordFromParams(t *testing.T) {
	p, err := core.NewLoanParameters(core.Money{Cents: 1000000}, 12, decimal.RequireFromString("6.5"))
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	r := RecordFromParams(p)
	if !r.Principal.Equal(decimal.NewFromInt(10000)) || r.TotalMonths != 12 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if !r.AnnualRatePercent.Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("expected rate 6.5, got %s", r.AnnualRatePercent)
	}
	if !r.MonthlyPayment.Equal(p.Payment.Decimal()) {
		t.Fatalf("expected payment %s, got %s", p.Payment, r.MonthlyPayment)
	}
}

func TestRecordDecodesPlainNumbers(t *testing.T) {
	raw := `{"Loan Amount": 10000.0, "Total Months": 12, "Annual Interest Rate": 6.0, "Monthly Payment": 860.66}`
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !r.MonthlyPayment.Equal(decimal.RequireFromString("860.66")) {
		t.Fatalf("unexpected payment %s", r.MonthlyPayment)
	}
}

func TestRecordEncodesPlainNumbers(t *testing.T) {
	r := Record{
		Principal:         decimal.RequireFromString("10000.50"),
		TotalMonths:       12,
		AnnualRatePercent: decimal.RequireFromString("6.5"),
		MonthlyPayment:    decimal.RequireFromString("860.66"),
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Loan Amount":10000.5,"Total Months":12,"Annual Interest Rate":6.5,"Monthly Payment":860.66}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Principal.Equal(r.Principal) || !back.MonthlyPayment.Equal(r.MonthlyPayment) ||
		!back.AnnualRatePercent.Equal(r.AnnualRatePercent) || back.TotalMonths != 12 {
		t.Fatalf("round trip changed record: %+v", back)
	}
	if strings.Contains(string(data), `"10000.5"`) {
		t.Fatalf("amount encoded as string: %s", data)
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Principal:         decimal.NewFromInt(1000),
		TotalMonths:       10,
		AnnualRatePercent: decimal.Zero,
		MonthlyPayment:    decimal.NewFromInt(100),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *Record)
		want   error
	}{
		{"zero principal", func(r *Record) { r.Principal = decimal.Zero }, core.ErrInvalidAmount},
		{"zero months", func(r *Record) { r.TotalMonths = 0 }, core.ErrInvalidTerm},
		{"too many months", func(r *Record) { r.TotalMonths = core.MaxTermMonths + 1 }, core.ErrInvalidTerm},
		{"rate above 100", func(r *Record) { r.AnnualRatePercent = decimal.NewFromInt(101) }, core.ErrInvalidRate},
		{"zero payment", func(r *Record) { r.MonthlyPayment = decimal.Zero }, core.ErrPaymentTooLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
