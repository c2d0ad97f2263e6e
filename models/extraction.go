package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateParser converts free-form date text into a calendar date.
type DateParser func(raw string) (time.Time, bool)

// ExtractedItem is a line item as returned by the OCR service.
type ExtractedItem struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Qty   decimal.Decimal `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Total decimal.Decimal `json:"total"`
}

// ExtractionResult is the structured output of an OCR extraction. Date is
// left unparsed.
type ExtractionResult struct {
	Supplier   string              `json:"supplier"`
	Client     string              `json:"client"`
	Date       string              `json:"date"`
	Total      decimal.NullDecimal `json:"total"`
	Items      []ExtractedItem     `json:"items"`
	Warnings   []string            `json:"warnings"`
	Confidence float64             `json:"confidence"`
	RawText    string              `json:"raw_text"`
}

// NewInvoiceFromExtraction builds a fresh Invoice from an extraction result.
// parseDate converts the raw date string and reports false when it cannot.
func NewInvoiceFromExtraction(res *ExtractionResult, source *InvoiceSourceInfo, parseDate DateParser) Invoice {
	inv := Invoice{
		Header: InvoiceHeader{
			SupplierName: strings.TrimSpace(res.Supplier),
			CustomerName: strings.TrimSpace(res.Client),
			TotalAmount:  res.Total,
		},
		Items:    make([]InvoiceItem, 0, len(res.Items)),
		Comments: make([]InvoiceComment, 0),
		Source:   source,
	}

	if parseDate != nil && strings.TrimSpace(res.Date) != "" {
		if d, ok := parseDate(res.Date); ok {
			inv.Header.InvoiceDate = &d
		}
	}

	for _, it := range res.Items {
		inv.Items = append(inv.Items, InvoiceItem{
			Description: strings.TrimSpace(it.Name),
			SKU:         strings.TrimSpace(it.Code),
			Quantity:    it.Qty,
			UnitPrice:   it.Price,
			LineTotal:   it.Total,
		})
	}

	return inv
}
