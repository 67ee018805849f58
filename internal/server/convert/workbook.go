package convert

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"

	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

var descriptions = []string{
	"POS PURCHASE GROCERY MART",
	"ATM WITHDRAWAL",
	"DIRECT DEPOSIT SALARY",
	"ONLINE TRANSFER",
	"CARD PAYMENT UTILITIES",
	"STANDING ORDER RENT",
	"INTEREST CREDIT",
	"CARD PAYMENT RESTAURANT",
}

func seedFor(rec *accounts.ConversionRecord) int64 {
	var seed int64
	for _, b := range []byte(rec.ID + rec.FileName) {
		seed = seed*31 + int64(b)
	}
	return seed
}

// BuildWorkbook synthesizes the xlsx result for a completed conversion.
// Rows are fabricated deterministically from the record, roughly 15 per
// converted page, in the Date/Description/Debit/Credit/Balance layout of a
// bank statement export. Nothing is written to disk.
func BuildWorkbook(rec *accounts.ConversionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Date", "Description", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "E1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "B", "B", 36); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seedFor(rec)))
	balance := 1000.0 + rng.Float64()*9000.0
	day := rec.Date.AddDate(0, -1, 0)

	rows := rec.Pages * 15
	for i := 0; i < rows; i++ {
		day = day.AddDate(0, 0, rng.Intn(3))
		amount := float64(rng.Intn(50000)) / 100.0

		debit, credit := "", ""
		if rng.Intn(3) == 0 {
			credit = fmt.Sprintf("%.2f", amount)
			balance += amount
		} else {
			debit = fmt.Sprintf("%.2f", amount)
			balance -= amount
		}

		values := []any{
			day.Format("02/01/2006"),
			descriptions[rng.Intn(len(descriptions))],
			debit,
			credit,
			fmt.Sprintf("%.2f", balance),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WorkbookFileName derives the download name for a conversion result:
// the original name with its extension replaced by .xlsx.
func WorkbookFileName(original string) string {
	base := original
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base + ".xlsx"
}
