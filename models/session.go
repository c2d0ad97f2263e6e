package models

import "time"

// SessionState tracks which kind of free-text input, if any, a user is
// expected to send next.
type SessionState string

const (
	StateIdle                   SessionState = "idle"
	StateAwaitingHeaderValue    SessionState = "awaiting_header_value"
	StateAwaitingItemValue      SessionState = "awaiting_item_value"
	StateAwaitingComment        SessionState = "awaiting_comment"
	StateAwaitingPeriodFrom     SessionState = "awaiting_period_from"
	StateAwaitingPeriodTo       SessionState = "awaiting_period_to"
	StateAwaitingPeriodSupplier SessionState = "awaiting_period_supplier"
)

// Session is the per-user conversation state. It is a plain value: command
// handlers receive the current session and return the next one.
type Session struct {
	State SessionState `json:"state"`
	Field string       `json:"field,omitempty"`
	Index int          `json:"index,omitempty"`

	PeriodFrom *time.Time `json:"period_from,omitempty"`
	PeriodTo   *time.Time `json:"period_to,omitempty"`
}

// IdleSession returns the initial session.
func IdleSession() Session {
	return Session{State: StateIdle}
}

// IsIdle reports whether no input is awaited.
func (s Session) IsIdle() bool {
	return s.State == "" || s.State == StateIdle
}
