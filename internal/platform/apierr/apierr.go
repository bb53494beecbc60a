package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers. The mediator maps Status onto the HTTP
// response; the core only ever returns one of these typed errors, never a
// raw store error.
const (
	CodeInvalidQuery     = "invalid_query"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeStoreUnavailable = "store_unavailable"
	CodeMalformedInput   = "malformed_input"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func InvalidQuery(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidQuery, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Conflict(err error) *Error {
	return New(http.StatusConflict, CodeConflict, err)
}

func StoreUnavailable(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeStoreUnavailable, err)
}

func MalformedInput(err error) *Error {
	return New(http.StatusBadRequest, CodeMalformedInput, err)
}

// From extracts the typed error when err carries one, else wraps it as a
// store failure so transport code always has a status and code to encode.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return StoreUnavailable(err)
}

func IsCode(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
