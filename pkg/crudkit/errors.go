package crudkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrAPIEndpointRequired  = errors.New("API endpoint is required")
	ErrTransportRequired    = errors.New("transport is required")
	ErrEmptyContent         = errors.New("content is null or empty")
	ErrValidationFailed     = errors.New("validation failed")
	ErrNilBlobData          = errors.New("blob data is nil")
	ErrInvalidQueryValue    = errors.New("value cannot be encoded as a query string")
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	ErrInvalidBase64        = errors.New("invalid base64 content")
	ErrPageFailed           = errors.New("page request failed")
	ErrSkipTLSOnlyInDev     = errors.New("TLS verification can only be skipped in development mode")
)

// HTTPError is returned by a Transport when the backend answers with a
// status code of 400 or above. The decoded body is kept so callers can look
// for a response envelope.
type HTTPError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Method     string `json:"method"      yaml:"method"`
	Path       string `json:"path"        yaml:"path"`
	Body       []byte `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap lets errors.Is match ErrUnexpectedHTTPStatus.
func (e *HTTPError) Unwrap() error {
	return ErrUnexpectedHTTPStatus
}

// IsNotFound checks if the error is a 404 from the backend.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a 403 from the backend.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == status
	}

	return false
}

// envelopeFromError decodes the body of an HTTPError into T when T is a
// response envelope. Bodies that do not carry a status are not envelopes.
func envelopeFromError[T any](err error) (T, bool) {
	var resp T

	if _, ok := any(resp).(envelope); !ok {
		return resp, false
	}

	httpErr := &HTTPError{}
	if !errors.As(err, &httpErr) || len(httpErr.Body) == 0 {
		return resp, false
	}

	var probe struct {
		Status *json.RawMessage `json:"status"`
	}

	if json.Unmarshal(httpErr.Body, &probe) != nil || probe.Status == nil {
		return resp, false
	}

	if json.Unmarshal(httpErr.Body, &resp) != nil {
		return resp, false
	}

	return resp, true
}

// resultOf folds a value and error into a ResponseResult. Error bodies that
// decode to an envelope are reported as that envelope.
func resultOf[T any](value T, err error) ResponseResult[T] {
	if err == nil {
		return NewResult(value)
	}

	if resp, ok := envelopeFromError[T](err); ok {
		return NewResult(resp)
	}

	return NewException[T](err)
}
