package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/utils"
)

// AnySupplier is the reply that skips the supplier filter.
const AnySupplier = "-"

// BeginPeriodQuery starts the listing dialog: from date, to date, supplier.
// It does not need a draft.
func (p *Processor) BeginPeriodQuery(ctx context.Context, userID int64, sess models.Session) (Outcome, error) {
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgEnterPeriodFrom,
		Expect:  ExpectDate,
		Session: models.Session{State: models.StateAwaitingPeriodFrom},
	}, nil
}

// SubmitPeriodValue advances the listing dialog. Dates that do not parse,
// and a to date before the from date, are asked for again.
func (p *Processor) SubmitPeriodValue(ctx context.Context, userID int64, sess models.Session, raw string) (Outcome, error) {
	value := strings.TrimSpace(raw)

	switch sess.State {
	case models.StateAwaitingPeriodFrom:
		from, ok := utils.ParseDate(value)
		if !ok {
			return periodReprompt(MsgPeriodBadDate, fmt.Errorf("date %q not recognized", value), sess), nil
		}
		return Outcome{
			Kind:    KindPrompt,
			Message: MsgEnterPeriodTo,
			Expect:  ExpectDate,
			Session: models.Session{State: models.StateAwaitingPeriodTo, PeriodFrom: &from},
		}, nil

	case models.StateAwaitingPeriodTo:
		to, ok := utils.ParseDate(value)
		if !ok {
			return periodReprompt(MsgPeriodBadDate, fmt.Errorf("date %q not recognized", value), sess), nil
		}
		if sess.PeriodFrom == nil {
			return rejected(MsgUnexpectedInput, ErrUnexpectedInput, models.IdleSession()), nil
		}
		if to.Before(*sess.PeriodFrom) {
			return periodReprompt(MsgPeriodBadRange, fmt.Errorf("to date %s precedes from date %s",
				to.Format("2006-01-02"), sess.PeriodFrom.Format("2006-01-02")), sess), nil
		}
		return Outcome{
			Kind:    KindPrompt,
			Message: MsgEnterSupplier,
			Expect:  ExpectText,
			Session: models.Session{State: models.StateAwaitingPeriodSupplier, PeriodFrom: sess.PeriodFrom, PeriodTo: &to},
		}, nil

	case models.StateAwaitingPeriodSupplier:
		if sess.PeriodFrom == nil || sess.PeriodTo == nil {
			return rejected(MsgUnexpectedInput, ErrUnexpectedInput, models.IdleSession()), nil
		}
		supplier := value
		if supplier == AnySupplier {
			supplier = ""
		}
		invoices, err := p.repo.Query(ctx, *sess.PeriodFrom, *sess.PeriodTo, supplier)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to query invoices: %w", err)
		}
		logger.Info(ctx, "period query", "from", sess.PeriodFrom.Format("2006-01-02"),
			"to", sess.PeriodTo.Format("2006-01-02"), "supplier", supplier, "found", len(invoices))
		return Outcome{
			Kind:     KindSuccess,
			Message:  MsgPeriodResults,
			Invoices: invoices,
			Session:  models.IdleSession(),
		}, nil
	}

	return rejected(MsgUnexpectedInput, ErrUnexpectedInput, sess), nil
}

func periodReprompt(msg MessageKey, reason error, sess models.Session) Outcome {
	return Outcome{Kind: KindReprompt, Message: msg, Expect: ExpectDate, Reason: reason, Session: sess}
}
