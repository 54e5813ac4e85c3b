package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"loanschedule/internal/core"
)

var pdfColumnWidths = []float64{20, 50, 45, 50, 50, 50}

// WritePDF renders the schedule as an A4 landscape PDF. The column header is
// repeated on every page.
func WritePDF(w io.Writer, s core.Schedule) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Repayment Schedule", true)
	pdf.SetAutoPageBreak(true, 15)

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			writePDFDetails(pdf, s)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range Columns {
			pdf.CellFormat(pdfColumnWidths[i], 8, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")

	pdf.AddPage()
	pdf.SetFont("Arial", "", 10)
	for _, r := range s.Rows {
		cells := []string{
			fmt.Sprintf("%d", r.Period),
			r.BeginningBalance.String(),
			r.Payment.String(),
			r.Interest.String(),
			r.Principal.String(),
			r.EndingBalance.String(),
		}
		for i, c := range cells {
			pdf.CellFormat(pdfColumnWidths[i], 7, c, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	sum := s.Totals()
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total Paid: $%s   Total Interest: $%s", sum.TotalPaid, sum.TotalInterest))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writePDFDetails(pdf *gofpdf.Fpdf, s core.Schedule) {
	p := s.Params
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Repayment Schedule")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	lines := []string{
		fmt.Sprintf("Loan Amount: $%s", p.Principal),
		fmt.Sprintf("Total Months: %d", p.TermMonths),
		fmt.Sprintf("Annual Interest Rate: %s%%", p.AnnualRatePercent.StringFixed(2)),
		fmt.Sprintf("Monthly Payment: $%s", p.Payment),
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(6)
	}
	pdf.Ln(4)
}
