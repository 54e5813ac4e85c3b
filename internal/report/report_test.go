package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"loanschedule/internal/core"
)

func sampleSchedule(t *testing.T) core.Schedule {
	t.Helper()
	p, err := core.NewLoanParameters(core.Money{Cents: 1000000}, 12, decimal.NewFromInt(6))
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	s, err := core.GenerateSchedule(p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	return s
}

func TestFormatRow(t *testing.T) {
	row := core.ScheduleRow{
		Period:           1,
		BeginningBalance: core.Money{Cents: 1000000},
		Payment:          core.Money{Cents: 86066},
		Interest:         core.Money{Cents: 5000},
		Principal:        core.Money{Cents: 81066},
		EndingBalance:    core.Money{Cents: 918934},
	}
	want := "1         " +
		"10000.00            " +
		"860.66              " +
		"50.00               " +
		"810.66              " +
		"9189.34             "
	if got := FormatRow(row); got != want {
		t.Fatalf("FormatRow mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteTable(t *testing.T) {
	s := sampleSchedule(t)
	var buf bytes.Buffer
	if err := WriteTable(&buf, s.Rows); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2+len(s.Rows) {
		t.Fatalf("expected %d lines, got %d", 2+len(s.Rows), len(lines))
	}
	if !strings.HasPrefix(lines[0], "Month     Beginning Balance   ") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", 140) {
		t.Errorf("unexpected divider %q", lines[1])
	}
	if !strings.HasPrefix(lines[len(lines)-1], "12        ") || !strings.Contains(lines[len(lines)-1], "0.00") {
		t.Errorf("unexpected last line %q", lines[len(lines)-1])
	}
}

func TestWriteSchedule(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSchedule(&buf, sampleSchedule(t)); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\nRepayment Schedule:\n"+strings.Repeat("-", 140)+"\nMonth") {
		t.Fatalf("unexpected preamble: %q", buf.String()[:60])
	}
}

func TestWriteDetails(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDetails(&buf, sampleSchedule(t).Params); err != nil {
		t.Fatalf("WriteDetails: %v", err)
	}
	want := "Loan Details:\n" +
		"Loan Amount: $10000.00\n" +
		"Total Months: 12\n" +
		"Annual Interest Rate: 6.00%\n" +
		"Monthly Payment: $860.66\n\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	sum := core.Summary{
		TotalPaid:      core.Money{Cents: 1032793},
		TotalInterest:  core.Money{Cents: 32793},
		TotalPrincipal: core.Money{Cents: 1000000},
	}
	if err := WriteSummary(&buf, sum); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	for _, want := range []string{"Total Paid: $10327.93", "Total Interest: $327.93", "Total Principal: $10000.00"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in %q", want, buf.String())
		}
	}
}

func TestWriteFile(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFile(&buf, sampleSchedule(t)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Loan Details:\n") || !strings.Contains(out, "\n\nMonth") {
		t.Fatalf("unexpected file layout: %q", out)
	}
}

func TestWritePDF(t *testing.T) {
	p, err := core.NewLoanParameters(core.Money{Cents: 20000000}, 360, decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	s, err := core.GenerateSchedule(p)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, s); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}
