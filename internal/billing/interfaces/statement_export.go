package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "theatre-billing/internal/billing/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BuildStatementPDF renders a statement as a one-page PDF.
func BuildStatementPDF(record *billing.StatementRecord) ([]byte, error) {
	if record == nil {
		return nil, billing.ErrNilRecord
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Statement for "+record.Customer, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Statement for "+record.Customer)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Statement: %s", record.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", record.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Play", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Genre", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Seats", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Credits", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, line := range record.Lines {
		pdf.CellFormat(70, 6, line.PlayName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(line.Genre), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", line.Audience), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, billing.FormatUSD(line.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", line.VolumeCredits), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Amount owed is %s", billing.FormatUSD(record.TotalAmount)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("You earned %d credits", record.VolumeCredits))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders a statement as a workbook with summary and lines sheets.
// Amounts are written in dollars.
func BuildStatementXLSX(record *billing.StatementRecord) ([]byte, error) {
	if record == nil {
		return nil, billing.ErrNilRecord
	}
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	linesSheet := "lines"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Statement", record.ID},
		{"Customer", record.Customer},
		{"Generated", record.CreatedAt.Format(time.RFC3339)},
		{"Currency", record.Currency},
		{"Amount owed", dollars(record.TotalAmount)},
		{"Volume credits", record.VolumeCredits},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	header := []any{"#", "Play", "Genre", "Seats", "Amount", "Credits"}
	if err := f.SetSheetRow(linesSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, line := range record.Lines {
		row := []any{line.Position, line.PlayName, string(line.Genre), line.Audience, dollars(line.Amount), line.VolumeCredits}
		if err := f.SetSheetRow(linesSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}
