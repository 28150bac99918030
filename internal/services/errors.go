package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUpload       Kind = "upload"
	KindPersistence  Kind = "persistence"
	KindUnauthorized Kind = "unauthorized"
)

// Error is the only error type services hand to the API layer. Err keeps
// the underlying cause for logs and is never rendered to clients.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrUpload       = &Error{Kind: KindUpload, Message: "upload failed"}
	ErrPersistence  = &Error{Kind: KindPersistence, Message: "persistence failed"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
)

func validationErr(msg string, details any) error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func notFoundErr(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func forbiddenErr(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func uploadErr(err error) error {
	return &Error{Kind: KindUpload, Message: "image upload failed", Err: err}
}

func persistenceErr(msg string, err error) error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

func unauthorizedErr(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// KindOf reports the taxonomy kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
