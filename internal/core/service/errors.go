package service

import (
	"errors"
	"fmt"
)

// DenialMessage is the fixed response for callers lacking the admin role.
const DenialMessage = "You must be authorized to do this!"

var (
	ErrInvalidCount  = errors.New("invalid count")
	ErrPoolExhausted = errors.New("pool exhausted")
	ErrPersistence   = errors.New("persistence failure")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotification  = errors.New("notification failed")
	ErrInvalidClaim  = errors.New("invalid claim")
)

// PartialDrawError reports a draw that stopped part way through the batch.
// Values in Added are committed and stay in the store.
type PartialDrawError struct {
	Requested int
	Added     []int
	Err       error
}

func (e *PartialDrawError) Error() string {
	return fmt.Sprintf("added %d of %d numbers before failure: %v", len(e.Added), e.Requested, e.Err)
}

func (e *PartialDrawError) Unwrap() error {
	return e.Err
}

// NotificationError carries a notifier failure. Its message is the
// notifier's own so it can be shown to the claimant as is.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return e.Err.Error()
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func (e *NotificationError) Is(target error) bool {
	return target == ErrNotification
}
