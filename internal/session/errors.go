package session

import (
	"errors"
	"net/http"

	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
)

var (
	ErrUnknownRequest   = errors.New("unknown request type")
	ErrMalformedRequest = errors.New("malformed request")
	ErrMissingInput     = errors.New("input is required")

	// ErrStaleInstance rejects a request pinned to a coordinator that is no
	// longer running.
	ErrStaleInstance = errors.New("pinned to a stale coordinator instance")
)

// Code is the wire name of an error class.
type Code string

const (
	CodeServiceError      Code = "service_error"
	CodeMalformedResponse Code = "malformed_response"
	CodeEmptyResponse     Code = "empty_response"
	CodeNotFound          Code = "not_found"
	CodeSuperseded        Code = "superseded"
	CodeStaleInstance     Code = "context_invalidated"
	CodeInvalidRequest    Code = "invalid_request"
	CodeInternal          Code = "internal"
)

// ErrorResponse is the body sent for a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  Code   `json:"code"`
}

func CodeOf(err error) Code {
	var se *mood.ServiceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return CodeServiceError
	case errors.Is(err, mood.ErrMalformedResponse):
		return CodeMalformedResponse
	case errors.Is(err, mood.ErrEmptyResponse):
		return CodeEmptyResponse
	case errors.Is(err, music.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, music.ErrSuperseded):
		return CodeSuperseded
	case errors.Is(err, ErrStaleInstance):
		return CodeStaleInstance
	case errors.Is(err, ErrMissingInput),
		errors.Is(err, ErrUnknownRequest),
		errors.Is(err, ErrMalformedRequest),
		errors.Is(err, music.ErrInvalidState),
		errors.Is(err, music.ErrInvalidSettings):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}

func (c Code) HTTPStatus() int {
	switch c {
	case "":
		return http.StatusOK
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeSuperseded, CodeStaleInstance:
		return http.StatusConflict
	case CodeServiceError, CodeMalformedResponse, CodeEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// remoteError keeps the server's message while matching the local sentinel.
type remoteError struct {
	msg string
	err error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.err }

// ErrorFromCode rebuilds a matchable error on the client side of the
// boundary, so errors.Is/As work the same in-process and over HTTP.
func ErrorFromCode(code Code, message string) error {
	var sentinel error
	switch code {
	case CodeServiceError:
		return &mood.ServiceError{Status: http.StatusBadGateway, Message: message}
	case CodeMalformedResponse:
		sentinel = mood.ErrMalformedResponse
	case CodeEmptyResponse:
		sentinel = mood.ErrEmptyResponse
	case CodeNotFound:
		sentinel = music.ErrNotFound
	case CodeSuperseded:
		sentinel = music.ErrSuperseded
	case CodeStaleInstance:
		sentinel = ErrStaleInstance
	case CodeInvalidRequest:
		sentinel = ErrMalformedRequest
	default:
		return errors.New(message)
	}
	return &remoteError{msg: message, err: sentinel}
}
