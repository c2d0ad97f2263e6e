package editor

import "github.com/yourusername/invoice-drafts/models"

// OutcomeKind classifies the single directive every command produces.
type OutcomeKind string

const (
	KindPrompt   OutcomeKind = "prompt"
	KindSuccess  OutcomeKind = "success"
	KindFailure  OutcomeKind = "failure"
	KindReprompt OutcomeKind = "reprompt"
	KindRejected OutcomeKind = "rejected"
	KindIgnored  OutcomeKind = "ignored"
	KindEmpty    OutcomeKind = "empty"
)

// Expect names the kind of free-text value awaited after a prompt.
type Expect string

const (
	ExpectNone   Expect = ""
	ExpectChoice Expect = "choice"
	ExpectText   Expect = "text"
	ExpectDate   Expect = "date"
	ExpectNumber Expect = "number"
)

// MessageKey identifies the human-facing message for an outcome. Rendering
// is left to the transport.
type MessageKey string

const (
	MsgNoDraft            MessageKey = "draft.missing"
	MsgDraftCreated       MessageKey = "draft.created"
	MsgDraftAbandoned     MessageKey = "draft.abandoned"
	MsgDraftSaved         MessageKey = "draft.saved"
	MsgUnexpectedInput    MessageKey = "input.unexpected"
	MsgChooseHeaderField  MessageKey = "header.choose_field"
	MsgEnterHeaderValue   MessageKey = "header.enter_value"
	MsgHeaderUpdated      MessageKey = "header.updated"
	MsgDateNotRecognized  MessageKey = "header.date_not_recognized"
	MsgTotalNotNumeric    MessageKey = "header.total_not_numeric"
	MsgNoItems            MessageKey = "items.empty"
	MsgChooseItem         MessageKey = "items.choose"
	MsgIndexOutOfRange    MessageKey = "items.out_of_range"
	MsgChooseItemField    MessageKey = "item.choose_field"
	MsgEnterItemValue     MessageKey = "item.enter_value"
	MsgItemNotNumeric     MessageKey = "item.not_numeric"
	MsgItemUpdated        MessageKey = "item.updated"
	MsgEnterComment       MessageKey = "comment.enter"
	MsgCommentAdded       MessageKey = "comment.added"
	MsgCommentEmpty       MessageKey = "comment.ignored_empty"
	MsgBulkApplied        MessageKey = "bulk.applied"
	MsgBulkNothingApplied MessageKey = "bulk.nothing_applied"
	MsgEnterPeriodFrom    MessageKey = "period.enter_from"
	MsgEnterPeriodTo      MessageKey = "period.enter_to"
	MsgEnterSupplier      MessageKey = "period.enter_supplier"
	MsgPeriodBadDate      MessageKey = "period.date_not_recognized"
	MsgPeriodBadRange     MessageKey = "period.to_before_from"
	MsgPeriodResults      MessageKey = "period.results"
)

// Option is one selectable choice in a prompt.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Outcome is the response directive of a command. Session is the session the
// caller must store for the user; Reason carries the guard or parse failure
// behind a non-success kind.
type Outcome struct {
	Kind      OutcomeKind          `json:"kind"`
	Message   MessageKey           `json:"message"`
	Expect    Expect               `json:"expect,omitempty"`
	Options   []Option             `json:"options,omitempty"`
	Session   models.Session       `json:"session"`
	Reason    error                `json:"-"`
	Draft     *models.InvoiceDraft `json:"draft,omitempty"`
	Tokens    []TokenResult        `json:"tokens,omitempty"`
	InvoiceID int64                `json:"invoice_id,omitempty"`
	Invoices  []models.Invoice     `json:"invoices,omitempty"`
}

func rejected(msg MessageKey, reason error, sess models.Session) Outcome {
	return Outcome{Kind: KindRejected, Message: msg, Reason: reason, Session: sess}
}
