package adminstub

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// SlipLine is one priced service on a rendered slip
type SlipLine struct {
	Product     string
	Description string
	Duration    string
	Period      string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// Slip is a fully priced invoice ready to render
type Slip struct {
	Number    string
	IssuedAt  time.Time
	Company   CompanyInfo
	Client    FixtureClient
	Lines     []SlipLine
	GSTRate   int
	SubTotal  decimal.Decimal
	GSTAmount decimal.Decimal
	Total     decimal.Decimal
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RenderSlip draws the slip as an A4 PDF
func RenderSlip(s *Slip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+s.Number, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, s.Company.Name)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, s.Company.Address)
	pdf.Ln(5)
	if s.Company.GSTIN != "" {
		pdf.Cell(0, 6, "GSTIN: "+s.Company.GSTIN)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(95, 7, "Invoice "+s.Number)
	pdf.CellFormat(95, 7, "Date: "+s.IssuedAt.Format("02 Jan 2006"), "", 0, "R", false, 0, "")
	pdf.Ln(9)

	pdf.SetFont("Arial", "", 10)
	name := s.Client.BrandName
	if name == "" {
		name = s.Client.ClientName
	}
	pdf.Cell(0, 6, "Bill To: "+name+" ("+s.Client.ClientID+")")
	pdf.Ln(5)
	pdf.Cell(0, 6, s.Client.CompanyName)
	pdf.Ln(9)

	widths := []float64{45, 50, 40, 15, 20, 20}
	headers := []string{"Service", "Description", "Period", "Qty", "Rate", "Amount"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, l := range s.Lines {
		desc := l.Description
		if l.Duration != "" {
			desc = fmt.Sprintf("%s (%s)", desc, l.Duration)
		}
		pdf.CellFormat(widths[0], 7, l.Product, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, l.Period, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, money(l.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, money(l.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	totals := []struct{ label, value string }{
		{"Sub Total", money(s.SubTotal)},
		{fmt.Sprintf("GST @ %d%%", s.GSTRate), money(s.GSTAmount)},
		{"Total", money(s.Total)},
	}
	labelWidth := widths[0] + widths[1] + widths[2] + widths[3] + widths[4]
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 10)
		}
		pdf.CellFormat(labelWidth, 7, t.label, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, t.value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("adminstub: render slip: %w", err)
	}
	return buf.Bytes(), nil
}
