package services

import (
	"errors"
	"fmt"
)

// Kind classifies account errors. The set is closed: every error returned by
// a manager is one of these kinds.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidCredentials
	KindEmailNotVerified
	KindInvalidSession
	KindEmailAlreadyRegistered
	KindInvalidOrExpiredToken
	KindUserNotFound
	KindEmailAlreadyVerified
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindInternal:               "Internal",
	KindInvalidCredentials:     "InvalidCredentials",
	KindEmailNotVerified:       "EmailNotVerified",
	KindInvalidSession:         "InvalidSession",
	KindEmailAlreadyRegistered: "EmailAlreadyRegistered",
	KindInvalidOrExpiredToken:  "InvalidOrExpiredToken",
	KindUserNotFound:           "UserNotFound",
	KindEmailAlreadyVerified:   "EmailAlreadyVerified",
	KindInvalidInput:           "InvalidInput",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the error type returned by the account managers. Code is a stable
// machine-readable identifier, Message is safe to show to the user and Err
// keeps the underlying cause for internal errors.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidSession)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}
	ErrEmailNotVerified   = &Error{Kind: KindEmailNotVerified, Code: "EMAIL_NOT_VERIFIED", Message: "please verify your email before signing in"}
	ErrInvalidSession     = &Error{Kind: KindInvalidSession, Code: "INVALID_SESSION", Message: "invalid session"}

	ErrEmailAlreadyRegistered = &Error{Kind: KindEmailAlreadyRegistered, Code: "EMAIL_ALREADY_REGISTERED", Message: "email already registered"}
	ErrInvalidOrExpiredToken  = &Error{Kind: KindInvalidOrExpiredToken, Code: "INVALID_OR_EXPIRED_TOKEN", Message: "invalid or expired token"}
	ErrUserNotFound           = &Error{Kind: KindUserNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrEmailAlreadyVerified   = &Error{Kind: KindEmailAlreadyVerified, Code: "EMAIL_ALREADY_VERIFIED", Message: "email already verified"}

	ErrInvalidInput = &Error{Kind: KindInvalidInput, Code: "INVALID_INPUT", Message: "invalid input"}
	ErrInternal     = &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal error"}
)

// invalidInput returns an ErrInvalidInput-kind error with a specific message.
func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Code: ErrInvalidInput.Code, Message: msg}
}

// internal wraps an unexpected error as KindInternal. Errors that already
// belong to the taxonomy pass through unchanged.
func internal(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindInternal, Code: ErrInternal.Code, Message: op, Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}
