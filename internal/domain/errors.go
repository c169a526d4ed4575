package domain

import (
	"errors"
	"fmt"
)

// Error category sentinels. The outermost handler wrapper classifies failures
// by these to pick the tone of the user-facing apology; classification never
// changes retry behavior.
var (
	// ErrTransport marks Telegram API delivery failures.
	ErrTransport = errors.New("telegram transport error")
	// ErrPersistence marks database failures other than benign
	// duplicate-membership inserts.
	ErrPersistence = errors.New("persistence error")
)

// Transport wraps err as a transport-category error.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// Persistence wraps err as a persistence-category error.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
