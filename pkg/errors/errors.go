// Package errors defines common error types used throughout the Instagram API wrapper.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrNoMoreItems is returned by cursors once the underlying list is exhausted.
var ErrNoMoreItems = stderrors.New("no more items available")

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthError indicates that the login handshake failed.
// The underlying dispatcher error is kept in Err so callers can still match
// *SentryBlockError or *ResponseError through errors.As.
type AuthError struct {
	// Username is the account the login was attempted for
	Username string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	var parts []string
	parts = append(parts, "auth error")

	if e.Username != "" {
		parts = append(parts, fmt.Sprintf("username %q", e.Username))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthenticationRequiredError indicates an auth-gated call was attempted while
// the session is not logged in. No request was sent.
type AuthenticationRequiredError struct {
	// Operation is the endpoint or operation that was attempted
	Operation string
}

func (e *AuthenticationRequiredError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("authentication required for %s: not logged in", e.Operation)
	}
	return "authentication required: not logged in"
}

// RequestError indicates the request never produced an HTTP response
// (connection failure, timeout, malformed URL).
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ResponseError is a non-2xx response, or a 200 response whose status field is not "ok".
type ResponseError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Status is the "status" field of the JSON envelope, if one was decoded
	Status string
	// Message is the "message" field of the JSON envelope, if one was decoded
	Message string
	// Body contains the raw response body
	Body string
}

func (e *ResponseError) Error() string {
	if e.StatusCode == 404 {
		return "404: the item you are requesting does not exist"
	}
	if e.Message != "" {
		return fmt.Sprintf("request failed with code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with code %d", e.StatusCode)
}

// SentryBlockError is the service's anti-automation block signal. It is never retried;
// callers should back off at the account level.
type SentryBlockError struct {
	StatusCode int
	Message    string
}

func (e *SentryBlockError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sentry block (status %d)", e.StatusCode)
	}
	return "sentry block: " + e.Message
}

// MalformedResponseError indicates the body was not valid JSON where JSON was expected.
type MalformedResponseError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Body contains the raw response body (truncated)
	Body string
	// Err is the decoding error
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("malformed response (status %d)", e.StatusCode)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ParseError indicates a well-formed response did not have the expected shape.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is a local, pre-flight rejection. No request was sent.
type ValidationError struct {
	// Field names the offending input, e.g. "media[2].type"
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// TemplateError is a programming error in an endpoint declaration: the URL template
// references a path parameter the call did not supply.
type TemplateError struct {
	Template string
	Param    string
	Message  string
}

func (e *TemplateError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("endpoint template %q: missing path parameter %q", e.Template, e.Param)
	}
	return fmt.Sprintf("endpoint template %q: %s", e.Template, e.Message)
}

// ClientError indicates a problem in the facade outside the dispatcher.
type ClientError struct {
	// Operation describes what the client was trying to do
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ClientError) Error() string {
	if e.Err != nil && e.Operation == "" && e.Message == "" {
		return e.Err.Error()
	}
	if e.Operation != "" && e.Err != nil {
		return fmt.Sprintf("client error during %s: %v", e.Operation, e.Err)
	}
	if e.Operation != "" && e.Message != "" {
		return fmt.Sprintf("client error during %s: %s", e.Operation, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("client error: %s", e.Message)
	}
	return "client error"
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the dispatcher should try the request again.
// Client errors (4xx), sentry blocks, auth gates, validation and template errors are final;
// server errors, non-"ok" envelopes, malformed bodies and transport failures are transient.
// The dispatcher separately refuses to retry once the caller's context is done.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var sentry *SentryBlockError
	if stderrors.As(err, &sentry) {
		return false
	}
	var respErr *ResponseError
	if stderrors.As(err, &respErr) {
		return respErr.StatusCode < 400 || respErr.StatusCode > 499
	}
	var malformed *MalformedResponseError
	if stderrors.As(err, &malformed) {
		return malformed.StatusCode < 400 || malformed.StatusCode > 499
	}
	var reqErr *RequestError
	return stderrors.As(err, &reqErr)
}
