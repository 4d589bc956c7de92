package shopapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
)

// Error is a non-2xx response from the shop API. Message is the server's
// message field when present, else a generic status message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) StatusCode() int { return e.Status }

func (e *Error) ServerMessage() string { return e.Message }

func newStatusError(status int, raw []byte) error {
	msg := serverMessage(raw)
	if msg == "" {
		msg = fmt.Sprintf(httpStatusMessagePattern, status)
	}
	apiErr := &Error{Status: status, Message: msg}
	return pkgerrors.Wrap(codeForStatus(status), apiErr, msg)
}

func serverMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if !json.Valid(trimmed) {
		return nonJSONResponseMessage
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return ""
	}
	return body.Message
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		return pkgerrors.CodeDependency
	}
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the user-facing message of err: the typed message for
// storefront errors, the raw text otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return err.Error()
}
