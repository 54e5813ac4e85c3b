// Package report renders amortization schedules for people: the console
// table, the header block of the saved text file and a PDF export.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"loanschedule/internal/core"
)

const (
	rowFormat    = "%-10v%-20s%-20s%-20s%-20s%-20s\n"
	dividerWidth = 140
)

// Columns are the schedule headers, in display order.
var Columns = []string{
	"Month",
	"Beginning Balance",
	"Payment Amount",
	"Amount to Interest",
	"Amount to Principle",
	"Ending Balance",
}

func divider() string {
	return strings.Repeat("-", dividerWidth) + "\n"
}

// FormatRow renders one schedule row as a fixed-width line, without the
// trailing newline.
func FormatRow(r core.ScheduleRow) string {
	line := fmt.Sprintf(rowFormat,
		r.Period,
		r.BeginningBalance.String(),
		r.Payment.String(),
		r.Interest.String(),
		r.Principal.String(),
		r.EndingBalance.String(),
	)
	return strings.TrimSuffix(line, "\n")
}

// WriteTable writes the column headers, a divider and one line per row.
func WriteTable(w io.Writer, rows []core.ScheduleRow) error {
	bw := bufio.NewWriter(w)
	writeTable(bw, rows)
	return bw.Flush()
}

func writeTable(bw *bufio.Writer, rows []core.ScheduleRow) {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	fmt.Fprintf(bw, rowFormat, header...)
	bw.WriteString(divider())
	for _, r := range rows {
		bw.WriteString(FormatRow(r))
		bw.WriteByte('\n')
	}
}

// WriteSchedule writes the console form of a schedule: a title, a divider
// and the table.
func WriteSchedule(w io.Writer, s core.Schedule) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("\nRepayment Schedule:\n")
	bw.WriteString(divider())
	writeTable(bw, s.Rows)
	return bw.Flush()
}

// WriteDetails writes the "Loan Details:" block that heads the saved
// schedule file, followed by a blank line.
func WriteDetails(w io.Writer, p core.LoanParameters) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("Loan Details:\n")
	fmt.Fprintf(bw, "Loan Amount: $%s\n", p.Principal)
	fmt.Fprintf(bw, "Total Months: %d\n", p.TermMonths)
	fmt.Fprintf(bw, "Annual Interest Rate: %s%%\n", p.AnnualRatePercent.StringFixed(2))
	fmt.Fprintf(bw, "Monthly Payment: $%s\n", p.Payment)
	bw.WriteString("\n")
	return bw.Flush()
}

// WriteSummary writes the schedule totals.
func WriteSummary(w io.Writer, sum core.Summary) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(divider())
	fmt.Fprintf(bw, "Total Paid: $%s\n", sum.TotalPaid)
	fmt.Fprintf(bw, "Total Interest: $%s\n", sum.TotalInterest)
	fmt.Fprintf(bw, "Total Principal: $%s\n", sum.TotalPrincipal)
	return bw.Flush()
}

// WriteFile writes the complete saved-file form: details block then table.
func WriteFile(w io.Writer, s core.Schedule) error {
	if err := WriteDetails(w, s.Params); err != nil {
		return err
	}
	return WriteTable(w, s.Rows)
}
