package editor

import (
	"context"
	"strings"

	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
)

// BeginComment starts awaiting a free-text comment.
func (p *Processor) BeginComment(ctx context.Context, userID int64, sess models.Session) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}
	return Outcome{
		Kind:    KindPrompt,
		Message: MsgEnterComment,
		Expect:  ExpectText,
		Session: models.Session{State: models.StateAwaitingComment},
	}, nil
}

// SubmitComment queues a comment on the draft. Blank text is dropped
// without touching the draft.
func (p *Processor) SubmitComment(ctx context.Context, userID int64, sess models.Session, raw string) (Outcome, error) {
	if sess.State != models.StateAwaitingComment {
		return rejected(MsgUnexpectedInput, ErrUnexpectedInput, sess), nil
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		logger.Info(ctx, "empty comment ignored")
		return Outcome{Kind: KindIgnored, Message: MsgCommentEmpty, Session: models.IdleSession()}, nil
	}

	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, models.IdleSession()), nil
	}

	draft.Comments = append(draft.Comments, text)
	if err := p.store(ctx, userID, draft); err != nil {
		return Outcome{}, err
	}

	logger.Info(ctx, "comment queued", "pending", len(draft.Comments))
	return Outcome{Kind: KindSuccess, Message: MsgCommentAdded, Session: models.IdleSession(), Draft: draft}, nil
}
