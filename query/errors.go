package query

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Sentinel errors classifying every failure the core can surface. Callers
// match with errors.Is; wrapping sites attach context with errors.Wrapf or
// mark transport failures with MarkNetwork.
var (
	// A required input was absent. Surfaced before any network call.
	ErrMissingInput = errors.New("missing required input")
	// The provider transiently does not know the requested object yet,
	// e.g. the receipt of a just-submitted transaction. Retryable.
	ErrNotFound = errors.New("not found")
	// The transaction made it on chain but was rejected or reverted.
	// Terminal, never retried.
	ErrRejected = errors.New("transaction rejected")
	// The active connector does not implement the requested capability.
	ErrUnsupported = errors.New("operation not supported")
	// The lookup settled but resolved to nothing, e.g. a domain with no
	// registration. Terminal, unlike ErrNotFound.
	ErrUnresolved = errors.New("no resolution")
	// Transport-level failure talking to the provider. Retryable.
	ErrNetwork = errors.New("network failure")
)

func MissingInputf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrMissingInput)
}

func NotFoundf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

func Rejectedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrRejected)
}

func Unsupportedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnsupported)
}

func Unresolvedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnresolved)
}

// MarkNetwork tags a transport error as retryable.
func MarkNetwork(err error) error {
	if err == nil {
		return nil
	}

	return errors.Mark(err, ErrNetwork)
}

// Retryable reports whether the retry policy should pursue the fetch.
// Rejections and validation failures are final; context cancellation always
// stops retrying.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNetwork)
}
