package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/utils"
)

// Item field keys accepted by SelectItemField.
const (
	ItemName  = "name"
	ItemQty   = "qty"
	ItemPrice = "price"
	ItemTotal = "total"
	ItemCode  = "code"
)

var itemFieldOptions = []Option{
	{Key: ItemName, Label: "Name"},
	{Key: ItemQty, Label: "Quantity"},
	{Key: ItemPrice, Label: "Price"},
	{Key: ItemTotal, Label: "Line total"},
	{Key: ItemCode, Label: "Code"},
}

func isItemKey(key string) bool {
	for _, o := range itemFieldOptions {
		if o.Key == key {
			return true
		}
	}
	return false
}

func isNumericItemKey(key string) bool {
	return key == ItemQty || key == ItemPrice || key == ItemTotal
}

func checkIndex(draft *models.InvoiceDraft, index int) error {
	if n := len(draft.Invoice.Items); index < 1 || index > n {
		return &IndexOutOfRangeError{Index: index, Count: n}
	}
	return nil
}

func itemLabel(index int, item models.InvoiceItem) string {
	name := item.Description
	if name == "" {
		name = "(no name)"
	}
	return fmt.Sprintf("%d. %s: %s x %s = %s", index, name,
		item.Quantity.String(), item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2))
}

// BeginItemsEdit lists the draft's items for selection, or reports that
// there are none.
func (p *Processor) BeginItemsEdit(ctx context.Context, userID int64, sess models.Session) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}
	if len(draft.Invoice.Items) == 0 {
		return Outcome{Kind: KindEmpty, Message: MsgNoItems, Reason: ErrNoItems, Session: models.IdleSession()}, nil
	}

	options := make([]Option, 0, len(draft.Invoice.Items))
	for i, item := range draft.Invoice.Items {
		options = append(options, Option{Key: strconv.Itoa(i + 1), Label: itemLabel(i+1, item)})
	}
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgChooseItem,
		Expect:  ExpectChoice,
		Options: options,
		Session: models.IdleSession(),
	}, nil
}

// SelectItem offers the editable fields of item index (1-based). Guard
// failures hand the incoming session back untouched.
func (p *Processor) SelectItem(ctx context.Context, userID int64, sess models.Session, index int) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, sess), nil
	}
	if err := checkIndex(draft, index); err != nil {
		logger.Warn(ctx, "item selection out of range", "index", index, "items", len(draft.Invoice.Items))
		return rejected(MsgIndexOutOfRange, err, sess), nil
	}
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgChooseItemField,
		Expect:  ExpectChoice,
		Options: itemFieldOptions,
		Session: sess,
	}, nil
}

// SelectItemField starts awaiting a value for one field of item index.
func (p *Processor) SelectItemField(ctx context.Context, userID int64, sess models.Session, index int, key string) (Outcome, error) {
	if !isItemKey(key) {
		return Outcome{}, fmt.Errorf("%w: item %q", ErrUnknownField, key)
	}
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, sess), nil
	}
	if err := checkIndex(draft, index); err != nil {
		return rejected(MsgIndexOutOfRange, err, sess), nil
	}

	expect := ExpectText
	if isNumericItemKey(key) {
		expect = ExpectNumber
	}
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgEnterItemValue,
		Expect:  expect,
		Session: models.Session{State: models.StateAwaitingItemValue, Index: index, Field: key},
	}, nil
}

// SubmitItemValue applies raw to the awaited item field. Unlike header
// edits, a numeric value that does not parse keeps the session and stores
// nothing, so the same field is prompted again.
func (p *Processor) SubmitItemValue(ctx context.Context, userID int64, sess models.Session, raw string) (Outcome, error) {
	if sess.State != models.StateAwaitingItemValue {
		return rejected(MsgUnexpectedInput, ErrUnexpectedInput, sess), nil
	}
	if !isItemKey(sess.Field) {
		return rejected(MsgUnexpectedInput, fmt.Errorf("%w: item %q", ErrUnknownField, sess.Field), models.IdleSession()), nil
	}

	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}
	if err := checkIndex(draft, sess.Index); err != nil {
		logger.Warn(ctx, "item vanished while awaiting value", "index", sess.Index)
		return rejected(MsgIndexOutOfRange, err, models.IdleSession()), nil
	}

	value := strings.TrimSpace(raw)
	item := &draft.Invoice.Items[sess.Index-1]

	if isNumericItemKey(sess.Field) {
		amount, err := utils.ParseDecimal(value)
		if err != nil {
			return Outcome{
				Kind:    KindReprompt,
				Message: MsgItemNotNumeric,
				Expect:  ExpectNumber,
				Reason:  err,
				Session: sess,
			}, nil
		}
		switch sess.Field {
		case ItemQty:
			item.Quantity = amount
		case ItemPrice:
			item.UnitPrice = amount
		case ItemTotal:
			item.LineTotal = amount
		}
	} else {
		switch sess.Field {
		case ItemName:
			item.Description = value
		case ItemCode:
			item.SKU = value
		}
	}

	if err := p.store(ctx, userID, draft); err != nil {
		return Outcome{}, err
	}

	logger.Info(ctx, "item field submitted", "index", sess.Index, "field", sess.Field)
	return Outcome{Kind: KindSuccess, Message: MsgItemUpdated, Session: models.IdleSession(), Draft: draft}, nil
}
