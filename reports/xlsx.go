package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/invoice-drafts/models"
)

const (
	InvoicesSheet = "Invoices"
	ItemsSheet    = "Items"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var invoiceHeaders = []string{"ID", "Date", "Number", "Supplier", "Supplier tax id", "Customer", "Currency", "Total", "Items total", "Comments"}

var itemHeaders = []string{"Invoice ID", "Line", "Code", "Description", "Quantity", "Unit price", "Line total"}

// FileName returns the download name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("invoices_%s.xlsx", t.Format("20060102_150405"))
}

// WriteInvoicesXLSX writes one row per invoice to the Invoices sheet and one
// row per line item to the Items sheet.
func WriteInvoicesXLSX(w io.Writer, invoices []models.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InvoicesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeHeaderRow(f, InvoicesSheet, invoiceHeaders); err != nil {
		return err
	}
	if err := writeHeaderRow(f, ItemsSheet, itemHeaders); err != nil {
		return err
	}

	itemRow := 2
	for i, inv := range invoices {
		row := i + 2
		values := []any{
			inv.ID,
			formatDate(inv.Header.InvoiceDate),
			inv.Header.InvoiceNumber,
			inv.Header.SupplierName,
			inv.Header.SupplierTaxID,
			inv.Header.CustomerName,
			inv.Header.Currency,
			nullAmount(inv.Header.TotalAmount),
			inv.ItemsTotal().InexactFloat64(),
			len(inv.Comments),
		}
		if err := f.SetSheetRow(InvoicesSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write invoice row: %w", err)
		}

		for j, item := range inv.Items {
			values := []any{
				inv.ID,
				j + 1,
				item.SKU,
				item.Description,
				item.Quantity.InexactFloat64(),
				item.UnitPrice.InexactFloat64(),
				item.LineTotal.InexactFloat64(),
			}
			if err := f.SetSheetRow(ItemsSheet, fmt.Sprintf("A%d", itemRow), &values); err != nil {
				return fmt.Errorf("failed to write item row: %w", err)
			}
			itemRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	return nil
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("02.01.2006")
}

func nullAmount(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}
