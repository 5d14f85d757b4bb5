// Package errors classifies failures raised by the notes web handlers so they
// map onto one HTTP status and, optionally, one catalog message.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// Kind selects the response status for a failure.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
)

var statusByKind = map[Kind]int{
	KindInvalidInput: http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
}

// Error is a classified handler failure. Key names a catalog message that is
// safe to show users; Message and Cause are for logs and debug pages.
type Error struct {
	Kind    Kind
	Key     string
	Message string
	Cause   error
}

func (e Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}

// E classifies a failure with no underlying cause.
func E(kind Kind, message string) error {
	return Error{Kind: kind, Message: message}
}

// EK is E with a user-facing catalog key.
func EK(kind Kind, key string, message string) error {
	return Error{Kind: kind, Key: strings.TrimSpace(key), Message: message}
}

// Wrap classifies cause.
func Wrap(kind Kind, message string, cause error) error {
	return Error{Kind: kind, Message: message, Cause: cause}
}

// LocalizationKey returns the catalog key of the first classified error in
// the chain, or "".
func LocalizationKey(err error) string {
	if classified, ok := as(err); ok {
		return strings.TrimSpace(classified.Key)
	}
	return ""
}

// HTTPStatus returns 200 for nil, the kind's status for classified errors,
// and 500 for everything else.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	classified, ok := as(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, found := statusByKind[classified.Kind]; found {
		return status
	}
	return http.StatusInternalServerError
}

func as(err error) (Error, bool) {
	var classified Error
	if err == nil || !stderrors.As(err, &classified) {
		return Error{}, false
	}
	return classified, true
}
