// Package errorx maps domain errors onto HTTP responses.
package errorx

import (
	"errors"
	"net/http"

	"stockchat-api/internal/session"
)

// CodeError is an error with an HTTP status. Its body is {"detail": ...}.
type CodeError struct {
	Code   int
	Detail string
}

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Detail string `json:"detail"`
}

func (e *CodeError) Error() string { return e.Detail }

// Body returns the response payload.
func (e *CodeError) Body() ErrorBody { return ErrorBody{Detail: e.Detail} }

func New(code int, detail string) *CodeError {
	return &CodeError{Code: code, Detail: detail}
}

func BadRequest(detail string) *CodeError { return New(http.StatusBadRequest, detail) }

func NotFound(detail string) *CodeError { return New(http.StatusNotFound, detail) }

// From classifies err. Unknown errors become 500 with the error text.
func From(err error) *CodeError {
	var ce *CodeError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, session.ErrChatNotFound):
		return NotFound("Chat not found")
	case errors.Is(err, session.ErrEmptyMessage), errors.Is(err, session.ErrEmptyTitle):
		return BadRequest(err.Error())
	default:
		return New(http.StatusInternalServerError, err.Error())
	}
}

// Handler adapts From to httpx.SetErrorHandlerCtx.
func Handler(err error) (int, any) {
	ce := From(err)
	return ce.Code, ce.Body()
}
