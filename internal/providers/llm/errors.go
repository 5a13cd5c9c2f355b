package llm

import (
	"context"
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// ErrTransient marks timeouts, transport failures, and rate limits.
	// Callers may retry these.
	ErrTransient ErrorKind = iota
	// ErrRejected marks explicit refusals from the provider (content policy,
	// invalid request). Retrying would yield the same answer.
	ErrRejected
)

// GenerationError is the single failure type surfaced by every provider.
type GenerationError struct {
	Kind     ErrorKind
	Provider string
	Reason   string
	Err      error
}

func (e *GenerationError) Error() string {
	kind := "transient"
	if e.Kind == ErrRejected {
		kind = "rejected"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s generation error: %v", e.Provider, kind, e.Err)
	}
	return fmt.Sprintf("%s: %s generation error: %s", e.Provider, kind, e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func transientErr(provider string, err error) error {
	return &GenerationError{Kind: ErrTransient, Provider: provider, Err: err}
}

func rejectedErr(provider, reason string) error {
	return &GenerationError{Kind: ErrRejected, Provider: provider, Reason: reason}
}

// IsTransient reports whether err is a retryable generation failure.
func IsTransient(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Kind == ErrTransient
}

// IsRejected reports whether the provider explicitly declined the request.
func IsRejected(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Kind == ErrRejected
}

// Reason returns the provider's stated refusal reason, or the error text.
func Reason(err error) string {
	var ge *GenerationError
	if errors.As(err, &ge) {
		if ge.Reason != "" {
			return ge.Reason
		}
		if ge.Err != nil {
			return ge.Err.Error()
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func retryableStatus(code int) bool {
	return code == 408 || code == 429 || (code >= 500 && code <= 599)
}

func classifyTransport(provider string, err error) error {
	// Context cancellation belongs to the caller, not the provider.
	if errors.Is(err, context.Canceled) {
		return err
	}
	return transientErr(provider, err)
}
