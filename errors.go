package complaintflow

import (
	"errors"
	"fmt"
)

var (
	// ErrPoisonMessage marks a message that can never be processed, whatever the
	// number of deliveries. Every unwrap and decode failure wraps it.
	ErrPoisonMessage = errors.New("poison message")

	ErrEmptyBody       = errors.New("empty message body")
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrEmptyPayload    = errors.New("empty envelope payload")
	ErrInvalidEvent    = errors.New("invalid complaint processed event")

	// ErrDispatch wraps any failure reported by the notification dispatcher.
	ErrDispatch      = errors.New("dispatch failed")
	ErrDispatchPanic = errors.New("dispatcher panicked")

	// ErrTransport wraps receive/delete failures of the queue transport.
	ErrTransport = errors.New("queue transport error")

	ErrMissingQueueURL = errors.New("queue url is required")
)

// PoisonError is returned by Unwrap and DecodeEvent. It matches both
// ErrPoisonMessage and its cause under errors.Is.
type PoisonError struct {
	Kind FailureKind
	Err  error
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("poison message (%s): %v", e.Kind, e.Err)
}

func (e *PoisonError) Unwrap() []error { return []error{ErrPoisonMessage, e.Err} }

func poison(kind FailureKind, sentinel error, format string, args ...any) error {
	return &PoisonError{Kind: kind, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}

// IsPoison reports whether err classifies a message as poison.
func IsPoison(err error) bool {
	return errors.Is(err, ErrPoisonMessage)
}

// KindOf returns the failure kind carried by a PoisonError, or FailNone.
func KindOf(err error) FailureKind {
	var pe *PoisonError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailNone
}
