package test_helpers

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// RecordingTransport counts the requests that reach the transport and answers
// each with Respond, or with an error if Respond is nil.
type RecordingTransport struct {
	Respond func(*http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []*http.Request
}

// RoundTrip implements http.RoundTripper.
func (t *RecordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, r)
	t.mu.Unlock()
	if t.Respond == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return t.Respond(r)
}

// Calls returns the number of requests seen.
func (t *RecordingTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// Requests returns the requests seen.
func (t *RecordingTransport) Requests() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*http.Request(nil), t.requests...)
}

// JSONResponse builds a response with a JSON body for use in a RoundTripperFunc.
func JSONResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    r,
	}
}
