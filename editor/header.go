package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/utils"
)

// Header field keys accepted by SelectHeaderField.
const (
	HeaderSupplier  = "supplier"
	HeaderClient    = "client"
	HeaderDate      = "date"
	HeaderDocNumber = "doc_number"
	HeaderTotalSum  = "total_sum"
)

var headerOptions = []Option{
	{Key: HeaderSupplier, Label: "Supplier"},
	{Key: HeaderClient, Label: "Client"},
	{Key: HeaderDate, Label: "Date"},
	{Key: HeaderDocNumber, Label: "Document number"},
	{Key: HeaderTotalSum, Label: "Total"},
}

func isHeaderKey(key string) bool {
	for _, o := range headerOptions {
		if o.Key == key {
			return true
		}
	}
	return false
}

func headerExpect(key string) Expect {
	switch key {
	case HeaderDate:
		return ExpectDate
	case HeaderTotalSum:
		return ExpectNumber
	}
	return ExpectText
}

// BeginHeaderEdit lists the editable header fields.
func (p *Processor) BeginHeaderEdit(ctx context.Context, userID int64, sess models.Session) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgChooseHeaderField,
		Expect:  ExpectChoice,
		Options: headerOptions,
		Session: models.IdleSession(),
	}, nil
}

// SelectHeaderField starts awaiting a value for key. Keys come from the
// fixed option list, so an unknown key is returned as an error rather than
// a rejection.
func (p *Processor) SelectHeaderField(ctx context.Context, userID int64, sess models.Session, key string) (Outcome, error) {
	if !isHeaderKey(key) {
		return Outcome{}, fmt.Errorf("%w: header %q", ErrUnknownField, key)
	}
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgEnterHeaderValue,
		Expect:  headerExpect(key),
		Session: models.Session{State: models.StateAwaitingHeaderValue, Field: key},
	}, nil
}

// SubmitHeaderValue applies raw to the awaited header field. Header edits
// never retry: a date that does not parse clears the date, a total that does
// not parse is left as it was. Either way the draft is stored and the session
// returns to idle.
func (p *Processor) SubmitHeaderValue(ctx context.Context, userID int64, sess models.Session, raw string) (Outcome, error) {
	if sess.State != models.StateAwaitingHeaderValue {
		return rejected(MsgUnexpectedInput, ErrUnexpectedInput, sess), nil
	}
	if !isHeaderKey(sess.Field) {
		return rejected(MsgUnexpectedInput, fmt.Errorf("%w: header %q", ErrUnknownField, sess.Field), models.IdleSession()), nil
	}

	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}

	value := strings.TrimSpace(raw)
	header := &draft.Invoice.Header
	out := Outcome{Kind: KindSuccess, Message: MsgHeaderUpdated, Session: models.IdleSession()}

	switch sess.Field {
	case HeaderSupplier:
		header.SupplierName = value
	case HeaderClient:
		header.CustomerName = value
	case HeaderDocNumber:
		header.InvoiceNumber = value
	case HeaderDate:
		if d, ok := utils.ParseDate(value); ok {
			header.InvoiceDate = &d
		} else {
			header.InvoiceDate = nil
			out.Kind = KindFailure
			out.Message = MsgDateNotRecognized
			out.Reason = fmt.Errorf("date %q not recognized", value)
		}
	case HeaderTotalSum:
		if amount, err := utils.ParseDecimal(value); err == nil {
			header.TotalAmount.Decimal = amount
			header.TotalAmount.Valid = true
		} else {
			out.Kind = KindFailure
			out.Message = MsgTotalNotNumeric
			out.Reason = err
		}
	}

	if err := p.store(ctx, userID, draft); err != nil {
		return Outcome{}, err
	}

	logger.Info(ctx, "header field submitted", "field", sess.Field, "kind", out.Kind)
	out.Draft = draft
	return out, nil
}
