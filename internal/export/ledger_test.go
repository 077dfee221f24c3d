package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/export"
	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLedger_WriteLedger(t *testing.T) {
	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	fees := []hostel.MonthlyFee{
		{FeeID: "FEE1", StudentID: "STU001", StudentName: "Asha", Month: "March 2025", Amount: 1500, Status: hostel.FeePaid, Date: date},
		{FeeID: "FEE2", StudentID: "STU002", StudentName: "Ravi", Month: "March 2025", Amount: 1500, Status: hostel.FeeDue, Date: date},
	}
	invoices := []hostel.Invoice{
		{InvoiceID: "INV1", StudentID: "STU001", StudentName: "Asha", Description: "Room Change Fee", Amount: 50, Status: hostel.InvoiceUnpaid, Date: date},
	}

	var buf bytes.Buffer
	require.NoError(t, export.NewLedger().WriteLedger(&buf, fees, invoices))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.FeesSheet, export.InvoicesSheet}, f.GetSheetList())

	feeRows, err := f.GetRows(export.FeesSheet)
	require.NoError(t, err)
	require.Len(t, feeRows, 3)
	assert.Equal(t, "Fee ID", feeRows[0][0])
	assert.Equal(t, "FEE1", feeRows[1][0])
	assert.Equal(t, "March 2025", feeRows[1][3])
	assert.Equal(t, "Due", feeRows[2][5])
	assert.Equal(t, "01.03.2025", feeRows[2][6])

	invoiceRows, err := f.GetRows(export.InvoicesSheet)
	require.NoError(t, err)
	require.Len(t, invoiceRows, 2)
	assert.Equal(t, "Room Change Fee", invoiceRows[1][3])
	assert.Equal(t, "50", invoiceRows[1][4])
}

func TestLedger_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewLedger().WriteLedger(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.FeesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
