// Package export renders the hostel's billing ledger as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"

	"github.com/xuri/excelize/v2"
)

const (
	FeesSheet     = "Monthly Fees"
	InvoicesSheet = "Invoices"

	dateLayout = "02.01.2006"
)

var (
	feeHeaders     = []string{"Fee ID", "Allotment ID", "Student", "Month", "Amount", "Status", "Date"}
	invoiceHeaders = []string{"Invoice ID", "Allotment ID", "Student", "Description", "Amount", "Status", "Date"}
)

// Ledger writes one workbook with a sheet for monthly fees and one for invoices.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) WriteLedger(w io.Writer, fees []hostel.MonthlyFee, invoices []hostel.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FeesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(InvoicesSheet); err != nil {
		return fmt.Errorf("failed to create invoices sheet: %w", err)
	}

	feeRows := make([][]interface{}, 0, len(fees))
	for _, fee := range fees {
		feeRows = append(feeRows, []interface{}{
			fee.FeeID, fee.StudentID, fee.StudentName, fee.Month, fee.Amount, string(fee.Status), formatDate(fee.Date),
		})
	}
	if err := writeSheet(f, FeesSheet, feeHeaders, feeRows); err != nil {
		return err
	}

	invoiceRows := make([][]interface{}, 0, len(invoices))
	for _, inv := range invoices {
		invoiceRows = append(invoiceRows, []interface{}{
			inv.InvoiceID, inv.StudentID, inv.StudentName, inv.Description, inv.Amount, string(inv.Status), formatDate(inv.Date),
		})
	}
	if err := writeSheet(f, InvoicesSheet, invoiceHeaders, invoiceRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return nil
}
