package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/repository"
	"github.com/yourusername/invoice-drafts/store"
	"github.com/yourusername/invoice-drafts/utils"
)

// DraftStore is the per-user draft storage the processor reads and
// overwrites. Get must return store.ErrNotFound when the user has no draft.
type DraftStore interface {
	Get(ctx context.Context, userID int64) (*models.InvoiceDraft, error)
	Set(ctx context.Context, userID int64, d *models.InvoiceDraft) error
	Delete(ctx context.Context, userID int64) error
}

// Processor applies edit commands to a user's draft. It holds no per-user
// state: the session is passed in and the next session returned in the
// Outcome. Each command is one load-mutate-store sequence against the
// DraftStore.
type Processor struct {
	drafts DraftStore
	repo   repository.InvoiceRepository
	now    func() time.Time
}

type ProcessorOption func(*Processor)

// WithClock overrides the time source used for comment timestamps.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(drafts DraftStore, repo repository.InvoiceRepository, opts ...ProcessorOption) *Processor {
	p := &Processor{drafts: drafts, repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Draft returns the user's current draft, or nil when there is none.
func (p *Processor) Draft(ctx context.Context, userID int64) (*models.InvoiceDraft, error) {
	draft, err := p.drafts.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return draft, nil
}

func (p *Processor) store(ctx context.Context, userID int64, draft *models.InvoiceDraft) error {
	if err := p.drafts.Set(ctx, userID, draft); err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// StartDraft builds a fresh draft from an OCR extraction, replacing any draft
// the user already had, and resets the session.
func (p *Processor) StartDraft(ctx context.Context, userID int64, res *models.ExtractionResult, source *models.InvoiceSourceInfo) (Outcome, error) {
	draft := &models.InvoiceDraft{
		Invoice:   models.NewInvoiceFromExtraction(res, source, utils.ParseDate),
		RawText:   res.RawText,
		Comments:  []string{},
		Warnings:  res.Warnings,
		CreatedAt: p.now().UTC(),
	}
	if source != nil {
		draft.SourcePath = source.FilePath
	}

	if err := p.store(ctx, userID, draft); err != nil {
		return Outcome{}, err
	}

	logger.Info(ctx, "draft created", "items", len(draft.Invoice.Items), "warnings", len(draft.Warnings))
	return Outcome{
		Kind:    KindSuccess,
		Message: MsgDraftCreated,
		Session: models.IdleSession(),
		Draft:   draft,
	}, nil
}

// Abandon deletes the user's draft.
func (p *Processor) Abandon(ctx context.Context, userID int64, sess models.Session) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}
	if err := p.drafts.Delete(ctx, userID); err != nil {
		return Outcome{}, fmt.Errorf("failed to delete draft: %w", err)
	}

	logger.Info(ctx, "draft abandoned")
	return Outcome{Kind: KindSuccess, Message: MsgDraftAbandoned, Session: models.IdleSession()}, nil
}

// HandleText routes free text to the submit operation the session awaits.
func (p *Processor) HandleText(ctx context.Context, userID int64, sess models.Session, text string) (Outcome, error) {
	switch sess.State {
	case models.StateAwaitingHeaderValue:
		return p.SubmitHeaderValue(ctx, userID, sess, text)
	case models.StateAwaitingItemValue:
		return p.SubmitItemValue(ctx, userID, sess, text)
	case models.StateAwaitingComment:
		return p.SubmitComment(ctx, userID, sess, text)
	case models.StateAwaitingPeriodFrom, models.StateAwaitingPeriodTo, models.StateAwaitingPeriodSupplier:
		return p.SubmitPeriodValue(ctx, userID, sess, text)
	}
	return rejected(MsgUnexpectedInput, ErrUnexpectedInput, sess), nil
}
