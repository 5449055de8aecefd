package api

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultFailureMessage is used when the server gives no error text.
const DefaultFailureMessage = "Request failed"

// TransportError is returned when the request never produced an HTTP
// response: the network is unreachable, the call timed out, or the circuit
// breaker is open.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s %s: transport failure: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is returned when the response body is not a valid envelope.
type ParseError struct {
	Method   string
	Endpoint string
	Status   int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("api: %s %s: malformed response (status %d): %v", e.Method, e.Endpoint, e.Status, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RequestError is returned when the server rejected the call. Message is
// the server-supplied text and is safe to show to the user as is.
type RequestError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api: %s %s: %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// IsNotFound reports whether err is a RequestError with status 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by a RequestError, or 0.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

// IsRemote reports whether err came from the API client rather than from a
// local check.
func IsRemote(err error) bool {
	var (
		transportErr *TransportError
		parseErr     *ParseError
		reqErr       *RequestError
	)
	return errors.As(err, &transportErr) || errors.As(err, &parseErr) || errors.As(err, &reqErr)
}

func failureMessage(errText, message string) string {
	if errText != "" {
		return errText
	}
	if message != "" {
		return message
	}
	return DefaultFailureMessage
}
