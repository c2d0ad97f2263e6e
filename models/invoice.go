package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceHeader holds the non-itemized fields of an invoice. Every field is
// optional because OCR extraction is best-effort.
type InvoiceHeader struct {
	SupplierName  string              `json:"supplier_name,omitempty"`
	SupplierTaxID string              `json:"supplier_tax_id,omitempty"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CustomerTaxID string              `json:"customer_tax_id,omitempty"`
	InvoiceNumber string              `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time          `json:"invoice_date,omitempty"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	Currency      string              `json:"currency,omitempty"`
	Subtotal      decimal.NullDecimal `json:"subtotal"`
	TaxAmount     decimal.NullDecimal `json:"tax_amount"`
	TotalAmount   decimal.NullDecimal `json:"total_amount"`
}

// InvoiceItem is one line of an invoice. Quantity, unit price and line total
// are stored as given; nothing forces them to agree with each other.
type InvoiceItem struct {
	Description string          `json:"description"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Currency    string          `json:"currency,omitempty"`
}

// InvoiceComment is an append-only note attached to an invoice.
type InvoiceComment struct {
	Message   string     `json:"message"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// InvoiceSourceInfo records where an invoice came from.
type InvoiceSourceInfo struct {
	FilePath       string `json:"file_path,omitempty"`
	FileHash       string `json:"file_hash,omitempty"`
	OCRProvider    string `json:"ocr_provider,omitempty"`
	RawPayloadPath string `json:"raw_payload_path,omitempty"`
}

// Invoice aggregates a header, ordered items and comments. Item order defines
// the 1-based index used by item edit commands.
type Invoice struct {
	ID       int64              `json:"id,omitempty"`
	Header   InvoiceHeader      `json:"header"`
	Items    []InvoiceItem      `json:"items"`
	Comments []InvoiceComment   `json:"comments"`
	Source   *InvoiceSourceInfo `json:"source,omitempty"`
}

// ItemsTotal sums the line totals of all items.
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range inv.Items {
		sum = sum.Add(item.LineTotal)
	}
	return sum
}

// HasComment reports whether a comment with exactly this message is attached.
func (inv *Invoice) HasComment(message string) bool {
	for _, c := range inv.Comments {
		if c.Message == message {
			return true
		}
	}
	return false
}

// AddComment appends a comment.
func (inv *Invoice) AddComment(message, author string, at time.Time) {
	inv.Comments = append(inv.Comments, InvoiceComment{
		Message:   message,
		Author:    author,
		CreatedAt: &at,
	})
}
