package repository

import (
	"time"

	"github.com/yourusername/invoice-drafts/models"
	"gorm.io/datatypes"
)

// EncodeInvoice converts a domain Invoice into its database record.
func EncodeInvoice(inv *models.Invoice, userID int64) *models.InvoiceRecord {
	h := inv.Header
	record := &models.InvoiceRecord{
		UserID:        userID,
		SupplierName:  h.SupplierName,
		SupplierTaxID: h.SupplierTaxID,
		CustomerName:  h.CustomerName,
		CustomerTaxID: h.CustomerTaxID,
		InvoiceNumber: h.InvoiceNumber,
		InvoiceDate:   encodeDate(h.InvoiceDate),
		DueDate:       encodeDate(h.DueDate),
		Currency:      h.Currency,
		Subtotal:      models.NullNumeric{NullDecimal: h.Subtotal},
		TaxAmount:     models.NullNumeric{NullDecimal: h.TaxAmount},
		TotalAmount:   models.NullNumeric{NullDecimal: h.TotalAmount},
	}

	if inv.Source != nil {
		record.SourceFilePath = inv.Source.FilePath
		record.SourceFileHash = inv.Source.FileHash
		record.OCRProvider = inv.Source.OCRProvider
		record.RawPayloadPath = inv.Source.RawPayloadPath
	}

	for i, item := range inv.Items {
		record.Items = append(record.Items, models.InvoiceItemRecord{
			Position:    i + 1,
			Description: item.Description,
			SKU:         item.SKU,
			Quantity:    models.Numeric{Decimal: item.Quantity},
			UnitPrice:   models.Numeric{Decimal: item.UnitPrice},
			LineTotal:   models.Numeric{Decimal: item.LineTotal},
			Currency:    item.Currency,
		})
	}

	for i, c := range inv.Comments {
		record.Comments = append(record.Comments, models.InvoiceCommentRecord{
			Position: i + 1,
			Message:  c.Message,
			Author:   c.Author,
			PostedAt: c.CreatedAt,
		})
	}

	return record
}

// DecodeInvoice converts a database record back into a domain Invoice.
func DecodeInvoice(record *models.InvoiceRecord) models.Invoice {
	inv := models.Invoice{
		ID: int64(record.ID),
		Header: models.InvoiceHeader{
			SupplierName:  record.SupplierName,
			SupplierTaxID: record.SupplierTaxID,
			CustomerName:  record.CustomerName,
			CustomerTaxID: record.CustomerTaxID,
			InvoiceNumber: record.InvoiceNumber,
			InvoiceDate:   decodeDate(record.InvoiceDate),
			DueDate:       decodeDate(record.DueDate),
			Currency:      record.Currency,
			Subtotal:      record.Subtotal.NullDecimal,
			TaxAmount:     record.TaxAmount.NullDecimal,
			TotalAmount:   record.TotalAmount.NullDecimal,
		},
		Items:    make([]models.InvoiceItem, 0, len(record.Items)),
		Comments: make([]models.InvoiceComment, 0, len(record.Comments)),
	}

	if record.SourceFilePath != "" || record.SourceFileHash != "" || record.OCRProvider != "" || record.RawPayloadPath != "" {
		inv.Source = &models.InvoiceSourceInfo{
			FilePath:       record.SourceFilePath,
			FileHash:       record.SourceFileHash,
			OCRProvider:    record.OCRProvider,
			RawPayloadPath: record.RawPayloadPath,
		}
	}

	for _, item := range record.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description: item.Description,
			SKU:         item.SKU,
			Quantity:    item.Quantity.Decimal,
			UnitPrice:   item.UnitPrice.Decimal,
			LineTotal:   item.LineTotal.Decimal,
			Currency:    item.Currency,
		})
	}

	for _, c := range record.Comments {
		inv.Comments = append(inv.Comments, models.InvoiceComment{
			Message:   c.Message,
			Author:    c.Author,
			CreatedAt: c.PostedAt,
		})
	}

	return inv
}

func encodeDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(startOfDay(*t))
	return &d
}

func decodeDate(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := startOfDay(time.Time(*d))
	return &t
}
