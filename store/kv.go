package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("not found")
)

// KV is a byte-oriented key/value backend. Set replaces any previous value
// wholesale; there are no partial updates.
type KV interface {
	// Get returns the stored value.
	//
	// An ErrNotFound error MUST be returned if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes the key. An error is not returned if it does not exist.
	Del(ctx context.Context, key string) error
}
