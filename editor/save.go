package editor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
)

// AutoCommentAuthor is the author of comments written by reconciliation.
const AutoCommentAuthor = "auto"

const placeholder = "—"

// reconcileTolerance is the smallest rounded difference reported as a
// mismatch.
var reconcileTolerance = decimal.New(1, -2)

// Reconciliation compares the summed line totals with the header total.
// A missing header total counts as zero.
type Reconciliation struct {
	ItemsTotal  decimal.Decimal
	HeaderTotal decimal.Decimal
	Diff        decimal.Decimal
}

func Reconcile(inv *models.Invoice) Reconciliation {
	items := inv.ItemsTotal()
	header := decimal.Zero
	if inv.Header.TotalAmount.Valid {
		header = inv.Header.TotalAmount.Decimal
	}
	return Reconciliation{
		ItemsTotal:  items,
		HeaderTotal: header,
		Diff:        items.Sub(header).Round(2),
	}
}

// Mismatch reports whether the difference reaches the 0.01 tolerance.
func (r Reconciliation) Mismatch() bool {
	return r.Diff.Abs().GreaterThanOrEqual(reconcileTolerance)
}

// Note renders the auto-comment for inv.
func (r Reconciliation) Note(inv *models.Invoice) string {
	diff := r.Diff.StringFixed(2)
	if r.Diff.IsPositive() {
		diff = "+" + diff
	}
	return fmt.Sprintf("[auto] Расхождение сумм: по позициям %s, в шапке %s, разница %s (счёт №%s, поставщик %s)",
		r.ItemsTotal.StringFixed(2), r.HeaderTotal.StringFixed(2), diff,
		orPlaceholder(inv.Header.InvoiceNumber), orPlaceholder(inv.Header.SupplierName))
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// ApplyReconciliation appends the mismatch note to inv unless the totals
// agree or an identical note is already attached. It reports whether a
// note was added.
func ApplyReconciliation(inv *models.Invoice, at time.Time) bool {
	r := Reconcile(inv)
	if !r.Mismatch() {
		return false
	}
	note := r.Note(inv)
	if inv.HasComment(note) {
		return false
	}
	inv.AddComment(note, AutoCommentAuthor, at)
	return true
}

// Save finalizes the draft: reconciliation note first, then the queued
// comments in order, then persistence. The draft is deleted only after the
// repository accepted the invoice; on a persistence error it stays in the
// store untouched so the save can be retried.
func (p *Processor) Save(ctx context.Context, userID int64, sess models.Session) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}

	inv := draft.Invoice
	inv.Comments = append([]models.InvoiceComment(nil), draft.Invoice.Comments...)
	now := p.now().UTC()

	reconciled := ApplyReconciliation(&inv, now)
	author := strconv.FormatInt(userID, 10)
	for _, c := range draft.Comments {
		inv.AddComment(c, author, now)
	}

	id, err := p.repo.Save(ctx, &inv, userID)
	if err != nil {
		logger.Error(ctx, "failed to persist invoice, draft kept", "error", err)
		return Outcome{}, fmt.Errorf("failed to persist invoice: %w", err)
	}

	if err := p.drafts.Delete(ctx, userID); err != nil {
		// The invoice is already stored; a retry would duplicate it.
		logger.Error(ctx, "invoice saved but draft not cleared", "invoice_id", id, "error", err)
	}

	logger.Info(ctx, "invoice saved", "invoice_id", id, "auto_comment", reconciled, "comments", len(inv.Comments))
	return Outcome{Kind: KindSuccess, Message: MsgDraftSaved, InvoiceID: id, Session: models.IdleSession()}, nil
}
