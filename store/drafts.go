package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yourusername/invoice-drafts/models"
)

const defaultPrefix = "invoice-drafts"

// DraftStore keeps at most one InvoiceDraft per user. Values are encoded as
// JSON, so every Get returns an independent copy and every Set overwrites.
type DraftStore struct {
	kv     KV
	prefix string
}

func NewDraftStore(kv KV, prefix string) *DraftStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &DraftStore{kv: kv, prefix: prefix}
}

func (s *DraftStore) key(userID int64) string {
	return fmt.Sprintf("%s:draft:%d", s.prefix, userID)
}

// Get returns the user's draft or ErrNotFound.
func (s *DraftStore) Get(ctx context.Context, userID int64) (*models.InvoiceDraft, error) {
	b, err := s.kv.Get(ctx, s.key(userID))
	if err != nil {
		return nil, err
	}
	var d models.InvoiceDraft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft for user %d: %w", userID, err)
	}
	return &d, nil
}

func (s *DraftStore) Set(ctx context.Context, userID int64, d *models.InvoiceDraft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft for user %d: %w", userID, err)
	}
	return s.kv.Set(ctx, s.key(userID), b)
}

func (s *DraftStore) Delete(ctx context.Context, userID int64) error {
	return s.kv.Del(ctx, s.key(userID))
}

// SessionStore keeps the conversation state of each user, independently of
// the draft.
type SessionStore struct {
	kv     KV
	prefix string
}

func NewSessionStore(kv KV, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{kv: kv, prefix: prefix}
}

func (s *SessionStore) key(userID int64) string {
	return fmt.Sprintf("%s:session:%d", s.prefix, userID)
}

// Get returns the stored session, or an idle one when nothing is stored.
func (s *SessionStore) Get(ctx context.Context, userID int64) (models.Session, error) {
	b, err := s.kv.Get(ctx, s.key(userID))
	if errors.Is(err, ErrNotFound) {
		return models.IdleSession(), nil
	}
	if err != nil {
		return models.Session{}, err
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session for user %d: %w", userID, err)
	}
	return sess, nil
}

// Set stores the session. Idle sessions are deleted instead of written.
func (s *SessionStore) Set(ctx context.Context, userID int64, sess models.Session) error {
	if sess.IsIdle() {
		return s.kv.Del(ctx, s.key(userID))
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session for user %d: %w", userID, err)
	}
	return s.kv.Set(ctx, s.key(userID), b)
}
