package backend

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork   = errors.New("network request failed")
	ErrCancelled = errors.New("cancelled by user")
)

// Code is a provider error code.
type Code string

const (
	CodeInvalidEmail                         Code = "invalid-email"
	CodeMissingEmail                         Code = "missing-email"
	CodeMissingPassword                      Code = "missing-password"
	CodeWeakPassword                         Code = "weak-password"
	CodeWrongPassword                        Code = "wrong-password"
	CodeUnverifiedEmail                      Code = "unverified-email"
	CodeUserNotFound                         Code = "user-not-found"
	CodeEmailAlreadyInUse                    Code = "email-already-in-use"
	CodeUserDisabled                         Code = "user-disabled"
	CodeOperationNotAllowed                  Code = "operation-not-allowed"
	CodeInvalidCredential                    Code = "invalid-credential"
	CodeCredentialAlreadyInUse               Code = "credential-already-in-use"
	CodeAccountExistsWithDifferentCredential Code = "account-exists-with-different-credential"
	CodeNetworkRequestFailed                 Code = "network-request-failed"
	CodeTooManyRequests                      Code = "too-many-requests"
	CodeInvalidAPIKey                        Code = "invalid-api-key"
	CodeAppNotAuthorized                     Code = "app-not-authorized"
	CodeInvalidAppCredential                 Code = "invalid-app-credential"
	CodeNoSession                            Code = "no-current-user"
	CodeInternal                             Code = "internal-error"
)

// Error is a failure reported by the provider.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NetworkError wraps a transport failure.
func NetworkError(err error) *Error {
	return &Error{Code: CodeNetworkRequestFailed, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports network-coded errors as ErrNetwork.
func (e *Error) Is(target error) bool {
	return target == ErrNetwork && e.Code == CodeNetworkRequestFailed
}

// CodeOf extracts the provider code from err's chain.
func CodeOf(err error) (Code, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}
