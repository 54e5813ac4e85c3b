// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"loanschedule/internal/core"
	"loanschedule/internal/store"
)

// Schedule builds a small schedule for persistence tests.
func Schedule(t *testing.T, principalCents int64, months int, annual string) core.Schedule {
	t.Helper()
	p, err := core.NewLoanParameters(core.Money{Cents: principalCents}, months, decimal.RequireFromString(annual))
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	s, err := core.GenerateSchedule(p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	return s
}

// Exercise runs the shared contract against a fresh, empty store.
func Exercise(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty store: expected ErrNotFound, got %v", err)
	}

	first := Schedule(t, 1000000, 12, "6")
	if err := s.Save(ctx, store.RecordFromParams(first.Params), first); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertRecord(t, got, store.RecordFromParams(first.Params))

	// A second save replaces the first under the same key.
	second := Schedule(t, 2500050, 30, "4.25")
	if err := s.Save(ctx, store.RecordFromParams(second.Params), second); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	assertRecord(t, got, store.RecordFromParams(second.Params))

	bad := store.RecordFromParams(second.Params)
	bad.TotalMonths = 0
	if err := s.Save(ctx, bad, second); !errors.Is(err, core.ErrInvalidTerm) {
		t.Fatalf("invalid record: expected ErrInvalidTerm, got %v", err)
	}
}

func assertRecord(t *testing.T, got, want store.Record) {
	t.Helper()
	if !got.Principal.Equal(want.Principal) ||
		got.TotalMonths != want.TotalMonths ||
		!got.AnnualRatePercent.Equal(want.AnnualRatePercent) ||
		!got.MonthlyPayment.Equal(want.MonthlyPayment) {
		t.Fatalf("record mismatch: got %+v, want %+v", got, want)
	}
}
