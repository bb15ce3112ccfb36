// Package sanction renders the formal approval letter for a finalized
// decision record.
package sanction

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fintechfusion/loan-officer/internal/model/loan"
)

const (
	bankName    = "FinTech Fusion Bank"
	productName = "Digital Loan Officer"
)

// Renderer builds sanction letter PDFs.
type Renderer struct{}

// NewRenderer returns a sanction letter renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the letter as PDF bytes. The record is assumed final; the
// conversation service only hands one out for approved sessions.
func (r *Renderer) Render(record loan.SanctionRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Loan Sanction Letter", false)
	pdf.AddPage()

	drawWatermark(pdf)

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(20, 45, 90)
	pdf.CellFormat(0, 10, bankName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, productName+" - Personal Loan Sanction Letter", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Reference: "+record.Reference, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+record.IssuedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Dear %s,\n\nWe are pleased to inform you that your personal loan application has been approved on the terms below.",
		record.Name), "", "L", false)
	pdf.Ln(4)

	section(pdf, "Customer Details")
	row(pdf, "Name", record.Name)
	row(pdf, "Mobile", record.Phone)
	if record.PAN != "" {
		row(pdf, "PAN", record.PAN)
	}
	pdf.Ln(3)

	section(pdf, "Loan Details")
	// The rupee glyph is not in the core PDF fonts; use INR.
	row(pdf, "Sanctioned Amount", "INR "+loan.FormatINR(record.Amount))
	row(pdf, "Tenure", fmt.Sprintf("%d months", record.TenureMonths))
	row(pdf, "Interest Rate", fmt.Sprintf("%.1f%% p.a. (reducing balance)", record.AnnualRate))
	row(pdf, "Equated Monthly Installment", "INR "+loan.FormatINR(record.EMI))
	if record.CreditScore > 0 {
		row(pdf, "Derived Credit Score", fmt.Sprintf("%d", record.CreditScore))
	}
	pdf.Ln(3)

	section(pdf, "Terms & Conditions")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5,
		"1. This sanction is valid for 30 days from the date of issue.\n"+
			"2. Disbursal is subject to execution of the loan agreement and verification of original documents.\n"+
			"3. EMIs are payable monthly in advance via standing instruction.\n"+
			"4. Prepayment is permitted after six months without penalty.",
		"", "L", false)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, "This is a system-generated letter and does not require a signature.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render sanction letter: %w", err)
	}
	return buf.Bytes(), nil
}

func drawWatermark(pdf *gofpdf.Fpdf) {
	w, h := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(217, 230, 242)
	pdf.TransformBegin()
	pdf.TransformRotate(35, w/2, h/2)
	pdf.Text(w/2-70, h/2, bankName)
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(20, 45, 90)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(60, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}
