package repository

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks a transient backing store failure: a driver error,
// a timeout or an exhausted retry budget. Callers may retry it.
var ErrStoreUnavailable = errors.New("store unavailable")

// Unavailable wraps err as ErrStoreUnavailable, keeping the cause in the message.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
