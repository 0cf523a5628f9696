package core

import "github.com/pkg/errors"

var (
	// ErrForbidden is returned whenever the acting user may not perform an action on a resource.
	ErrForbidden = errors.New("permission denied")
	// ErrNotFound is the common cause of every "<entity> not found" error.
	ErrNotFound = errors.New("not found")
)

// NotFoundError wraps ErrNotFound with the name of the missing entity.
type NotFoundError struct {
	Entity string
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func (err NotFoundError) Error() string {
	return err.Entity + " not found"
}

func (err NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether any error in err's chain is a not found error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) || errors.Is(errors.Cause(err), ErrNotFound)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
