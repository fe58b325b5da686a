package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies ledger failures so callers can map them to a response and
// decide whether a retry makes sense.
type Kind int

const (
	// KindValidation covers bad input: non-positive amounts, unknown teams,
	// same-team transfers, overdrafts when negative balances are disabled.
	KindValidation Kind = iota
	// KindNotFound covers a missing property or team on a dependent operation.
	KindNotFound
	// KindConflict covers a property that is already owned or a team id that
	// is already taken.
	KindConflict
	// KindTransient covers timeouts and storage failures. Retryable.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "transient"
	}
}

// Error is a ledger failure with a message suitable for direct display.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure class from any error returned by the ledger.
// Unknown errors count as transient: the mutation rolled back, so the caller
// may retry.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return KindTransient
}

// classify wraps raw storage errors into the ledger taxonomy. Domain errors
// pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTransient, Message: "the bank took too long to respond, please try again", Err: err}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}
	}
	return &Error{Kind: KindTransient, Message: "the bank is temporarily unavailable, please try again", Err: err}
}
