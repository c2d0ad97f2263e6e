package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceRecord is the database model for a finalized Invoice.
type InvoiceRecord struct {
	ID             uint                   `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	DeletedAt      gorm.DeletedAt         `gorm:"index" json:"-"`
	UserID         int64                  `gorm:"not null;index" json:"user_id"`
	SupplierName   string                 `gorm:"size:255;index" json:"supplier_name"`
	SupplierTaxID  string                 `gorm:"size:32" json:"supplier_tax_id"`
	CustomerName   string                 `gorm:"size:255" json:"customer_name"`
	CustomerTaxID  string                 `gorm:"size:32" json:"customer_tax_id"`
	InvoiceNumber  string                 `gorm:"size:100" json:"invoice_number"`
	InvoiceDate    *datatypes.Date        `gorm:"index" json:"invoice_date"`
	DueDate        *datatypes.Date        `json:"due_date"`
	Currency       string                 `gorm:"size:10" json:"currency"`
	Subtotal       NullNumeric            `json:"subtotal"`
	TaxAmount      NullNumeric            `json:"tax_amount"`
	TotalAmount    NullNumeric            `json:"total_amount"`
	SourceFilePath string                 `gorm:"size:500" json:"source_file_path"`
	SourceFileHash string                 `gorm:"size:64" json:"source_file_hash"`
	OCRProvider    string                 `gorm:"size:50" json:"ocr_provider"`
	RawPayloadPath string                 `gorm:"size:500" json:"raw_payload_path"`
	Items          []InvoiceItemRecord    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Comments       []InvoiceCommentRecord `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"comments"`
}

// TableName overrides the table name
func (InvoiceRecord) TableName() string {
	return "invoices"
}

// InvoiceItemRecord is the database model for an InvoiceItem. Position keeps
// the item order of the original invoice.
type InvoiceItemRecord struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	Position    int             `gorm:"not null" json:"position"`
	Description string          `gorm:"type:text" json:"description"`
	SKU         string          `gorm:"size:100" json:"sku"`
	Quantity    Numeric         `gorm:"not null" json:"quantity"`
	UnitPrice   Numeric         `gorm:"not null" json:"unit_price"`
	LineTotal   Numeric         `gorm:"not null" json:"line_total"`
	Currency    string          `gorm:"size:10" json:"currency"`
}

// TableName overrides the table name
func (InvoiceItemRecord) TableName() string {
	return "invoice_items"
}

// InvoiceCommentRecord is the database model for an InvoiceComment.
type InvoiceCommentRecord struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	InvoiceID uint       `gorm:"not null;index" json:"invoice_id"`
	Position  int        `gorm:"not null" json:"position"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Author    string     `gorm:"size:100" json:"author"`
	PostedAt  *time.Time `json:"posted_at"`
}

// TableName overrides the table name
func (InvoiceCommentRecord) TableName() string {
	return "invoice_comments"
}
