package autherr

import "fmt"

// Error is a classified failure. Informational errors describe an outcome
// the user chose (a cancelled picker) and are not shown as failures.
type Error struct {
	Kind          Kind
	Message       string
	Informational bool
	Err           error
}

// New returns an Error of kind with its default message.
func New(kind Kind) *Error {
	return &Error{Kind: kind, Message: kind.Message()}
}

// WithMessage returns an Error of kind with a custom message.
func WithMessage(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Category() Category { return e.Kind.Category() }

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) wrap(cause error) *Error {
	e.Err = cause
	return e
}
