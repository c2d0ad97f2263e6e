package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/invoice-drafts/models"
)

func TestWriteInvoicesXLSX(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	invoices := []models.Invoice{
		{
			ID: 7,
			Header: models.InvoiceHeader{
				SupplierName:  "Acme",
				InvoiceNumber: "INV-7",
				InvoiceDate:   &date,
				Currency:      "EUR",
				TotalAmount:   decimal.NewNullDecimal(decimal.RequireFromString("45.5")),
			},
			Items: []models.InvoiceItem{
				{Description: "Bolts", SKU: "B1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("2"), LineTotal: decimal.RequireFromString("20")},
				{Description: "Nuts", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.RequireFromString("5.1"), LineTotal: decimal.RequireFromString("25.5")},
			},
			Comments: []models.InvoiceComment{{Message: "ok"}},
		},
		{ID: 8, Header: models.InvoiceHeader{SupplierName: "Globex"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInvoicesXLSX(&buf, invoices))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{InvoicesSheet, ItemsSheet}, f.GetSheetList())

	rows, err := f.GetRows(InvoicesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, invoiceHeaders, rows[0])
	assert.Equal(t, []string{"7", "12.06.2025", "INV-7", "Acme", "", "", "EUR", "45.5", "45.5", "1"}, rows[1])
	assert.Equal(t, "8", rows[2][0])
	assert.Equal(t, "Globex", rows[2][3])

	items, err := f.GetRows(ItemsSheet)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"7", "1", "B1", "Bolts", "10", "2", "20"}, items[1])
	assert.Equal(t, []string{"7", "2", "", "Nuts", "5", "5.1", "25.5"}, items[2])
}

func TestWriteInvoicesXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoicesXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(InvoicesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "invoices_20250612_103000.xlsx", FileName(time.Date(2025, 6, 12, 10, 30, 0, 0, time.UTC)))
}
