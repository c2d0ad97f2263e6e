package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDraft indicates that the user has no draft to operate on.
	ErrNoDraft = errors.New("no draft")
	// ErrNoItems indicates that the draft invoice has no line items.
	ErrNoItems = errors.New("draft has no items")
	// ErrUnknownField indicates a header or item field key outside the
	// supported set.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnexpectedInput indicates free text arriving while the session
	// awaits nothing, or awaits something else.
	ErrUnexpectedInput = errors.New("unexpected input")
)

// IndexOutOfRangeError reports a 1-based item index outside [1, Count].
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("item index %d out of range [1, %d]", e.Index, e.Count)
}
