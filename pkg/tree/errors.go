package tree

import "errors"

// TreeError represents a domain error from tree operations.
//
// These are business logic errors (node not found, permission denied,
// quota exhausted) as opposed to infrastructure errors (storage engine
// failure, network error). Callers branch on Code; infrastructure
// failures are wrapped with ErrDependencyFailure and never leaked raw.
type TreeError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the node name or path related to the error (if applicable)
	Path string

	// Err is the wrapped lower-layer cause, if any
	Err error
}

// Error implements the error interface.
func (e *TreeError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// Unwrap exposes the lower-layer cause for errors.Is/As.
func (e *TreeError) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of a tree error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested node, user, or grant doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrForbidden indicates a permission or lock-credential failure
	ErrForbidden

	// ErrConflict indicates a structural conflict: name collision,
	// duplicate share grant, move into self or a descendant, move into the
	// current parent
	ErrConflict

	// ErrQuotaExceeded indicates insufficient storage headroom for an
	// upload or restore
	ErrQuotaExceeded

	// ErrInvalidArgument indicates invalid parameters: empty or illegal
	// name, wrong node kind for the operation
	ErrInvalidArgument

	// ErrDependencyFailure indicates the blob store or the persistence
	// layer is unavailable or failed mid-operation
	ErrDependencyFailure
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrForbidden:
		return "forbidden"
	case ErrConflict:
		return "conflict"
	case ErrQuotaExceeded:
		return "quota exceeded"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrDependencyFailure:
		return "dependency failure"
	default:
		return "unknown"
	}
}

// IsCode reports whether err is (or wraps) a TreeError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var te *TreeError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// WrapDependency wraps an infrastructure failure into a TreeError with
// ErrDependencyFailure, preserving the cause for errors.Is/As.
func WrapDependency(message string, err error) *TreeError {
	return &TreeError{
		Code:    ErrDependencyFailure,
		Message: message,
		Err:     err,
	}
}
