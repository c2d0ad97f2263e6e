package models

import "time"

// InvoiceDraft is a user's in-progress invoice plus editing metadata.
// Comments holds free-text replies that become InvoiceComments only when the
// draft is saved.
type InvoiceDraft struct {
	Invoice    Invoice   `json:"invoice"`
	SourcePath string    `json:"source_path,omitempty"`
	RawText    string    `json:"raw_text,omitempty"`
	Comments   []string  `json:"comments"`
	Warnings   []string  `json:"warnings,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
