// Package apperr defines the error classes callers branch on.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of an error.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindOutOfRange   Kind = "out_of_range"
	KindInvalidInput Kind = "invalid_input"
	KindNotClosed    Kind = "not_closed"
	KindStorage      Kind = "storage"
)

// Error is a stable, machine-readable error class.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches errors of the same code, so a sentinel matches any copy made
// with WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithMessage returns a new Error with the same Kind and Code.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrJobSiteNotFound = &Error{Kind: KindNotFound, Code: "JOB_SITE_NOT_FOUND", Message: "job site not found"}
	ErrEntryNotFound   = &Error{Kind: KindNotFound, Code: "TIME_ENTRY_NOT_FOUND", Message: "time entry not found"}
	ErrInvalidToken    = &Error{Kind: KindNotFound, Code: "INVALID_TOKEN", Message: "invalid QR code"}

	ErrForbidden = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: "not allowed"}

	ErrAlreadyClockedIn   = &Error{Kind: KindConflict, Code: "ALREADY_CLOCKED_IN", Message: "already clocked in, clock out first"}
	ErrAlreadyClockedOut  = &Error{Kind: KindConflict, Code: "ALREADY_CLOCKED_OUT", Message: "time entry is already closed"}
	ErrBreakAlreadyActive = &Error{Kind: KindConflict, Code: "BREAK_ALREADY_ACTIVE", Message: "a break is already in progress"}
	ErrNoActiveBreak      = &Error{Kind: KindConflict, Code: "NO_ACTIVE_BREAK", Message: "no break in progress"}
	ErrDuplicate          = &Error{Kind: KindConflict, Code: "DUPLICATE", Message: "duplicate record"}

	ErrOutOfRange = &Error{Kind: KindOutOfRange, Code: "OUT_OF_RANGE", Message: "too far from the job site"}

	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Code: "INVALID_INPUT", Message: "invalid input"}
	ErrInvalidRadius      = &Error{Kind: KindInvalidInput, Code: "INVALID_RADIUS", Message: "radius must be within [10,1000] meters"}
	ErrInvalidCoordinates = &Error{Kind: KindInvalidInput, Code: "INVALID_COORDINATES", Message: "invalid coordinates"}
	ErrClockSkew          = &Error{Kind: KindInvalidInput, Code: "CLOCK_SKEW", Message: "clock-out precedes clock-in"}

	ErrNotClosed = &Error{Kind: KindNotClosed, Code: "NOT_CLOSED", Message: "time entry is still open"}

	ErrStorage = &Error{Kind: KindStorage, Code: "STORAGE_ERROR", Message: "storage failure"}
)

// Storage wraps a persistence failure. The cause stays reachable through
// errors.Unwrap for logging but callers only see the storage class.
func Storage(cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return cause
	}
	return &Error{Kind: KindStorage, Code: ErrStorage.Code, Message: ErrStorage.Message, cause: cause}
}

// KindOf classifies err. Unclassified errors are reported as storage
// failures since everything else the core returns is classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}
