package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
)

// ErrorKind categorizes failures from the customers API.
type ErrorKind int

const (
	// KindNetwork indicates a transport-level failure (connection refused,
	// unreachable host, DNS failure).
	KindNetwork ErrorKind = iota
	// KindTimeout indicates the request deadline or context expired.
	KindTimeout
	// KindAuth indicates the server rejected the request credentials.
	KindAuth
	// KindNotFound indicates the requested record does not exist.
	KindNotFound
	// KindHTTP indicates any other non-2xx response.
	KindHTTP
	// KindDecode indicates the response body could not be parsed.
	KindDecode
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "authentication error"
	case KindNotFound:
		return "not found"
	case KindHTTP:
		return "server error"
	case KindDecode:
		return "decode error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// APIError is the error type returned by all Client operations.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // HTTP status code, when applicable
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyTransportError maps an error from http.Client.Do to an APIError.
func classifyTransportError(message string, err error) *APIError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: message, Err: err}
	}
	if os.IsTimeout(err) {
		return &APIError{Kind: KindTimeout, Message: message, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("%s: cannot resolve %s", message, dnsErr.Name),
			Err:     err,
		}
	}
	return &APIError{Kind: KindNetwork, Message: message, Err: err}
}

// newStatusError maps a non-2xx response status to an APIError.
func newStatusError(statusCode int, message string) *APIError {
	kind := KindHTTP
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusNotFound:
		kind = KindNotFound
	}
	return &APIError{Kind: kind, Message: message, StatusCode: statusCode}
}

// newDecodeError wraps a body-parsing failure.
func newDecodeError(message string, err error) *APIError {
	return &APIError{Kind: KindDecode, Message: message, Err: err}
}

// IsNotFound reports whether err is an APIError with KindNotFound.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsAuth reports whether err is an APIError with KindAuth.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// ShortMessage returns a concise, user-displayable message for err. It is
// used by the TUI status line, where a full error chain is too noisy.
func ShortMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case KindTimeout:
		return "server not responding (timeout)"
	case KindNetwork:
		return "cannot reach server - check connection and server URL"
	case KindAuth:
		return "authentication failed - check API token"
	case KindNotFound:
		return "record not found"
	case KindHTTP:
		return fmt.Sprintf("server error (HTTP %d)", apiErr.StatusCode)
	case KindDecode:
		return "unexpected response from server"
	default:
		return apiErr.Message
	}
}
