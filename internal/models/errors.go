package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for callers at the API and CLI boundary
type ErrorKind string

const (
	// KindNotFound covers missing entities and entities the caller may not see.
	// The two cases are deliberately indistinguishable.
	KindNotFound ErrorKind = "not_found"
	// KindValidation covers bad input: empty titles, out-of-range targets, bad permutations
	KindValidation ErrorKind = "validation"
	// KindConflict covers concurrent modifications the store refused to serialize
	KindConflict ErrorKind = "conflict"
	// KindStorage covers any other persistence failure
	KindStorage ErrorKind = "storage"
	// KindUnauthorized covers missing or invalid credentials
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error is a classified domain error.
// Sentinels declared by service packages are *Error values, and
// errors.Is(err, ErrNotFound) matches any *Error of that kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Kind sentinels, matched by kind only
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels (no message) by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// NotFound returns a not-found error with the given message
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Validation returns a validation error with the given message
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict returns a conflict error wrapping cause
func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

// Storage returns a storage error wrapping cause
func Storage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: cause}
}

// Unauthorized returns an authentication error with the given message
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are reported as storage failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
