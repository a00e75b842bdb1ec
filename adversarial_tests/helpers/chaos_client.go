package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone passes requests through to the wrapped transport
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the request before it is sent
	ChaosConnectionReset

	// ChaosPartialRead returns a body that fails mid-read
	ChaosPartialRead

	// ChaosEmptyBody returns 200 with no body
	ChaosEmptyBody

	// ChaosInvalidJSON returns 200 with a truncated JSON body
	ChaosInvalidJSON

	// ChaosServerError returns a 503 with a JSON envelope
	ChaosServerError

	// ChaosSentryBlock returns the service's anti-automation block
	ChaosSentryBlock

	// ChaosDNSFailure fails the request with a lookup error
	ChaosDNSFailure

	// ChaosIntermittent randomly applies one of the failure modes above
	ChaosIntermittent
)

func (m ChaosMode) String() string {
	switch m {
	case ChaosNone:
		return "none"
	case ChaosConnectionReset:
		return "connection_reset"
	case ChaosPartialRead:
		return "partial_read"
	case ChaosEmptyBody:
		return "empty_body"
	case ChaosInvalidJSON:
		return "invalid_json"
	case ChaosServerError:
		return "server_error"
	case ChaosSentryBlock:
		return "sentry_block"
	case ChaosDNSFailure:
		return "dns_failure"
	case ChaosIntermittent:
		return "intermittent"
	default:
		return fmt.Sprintf("ChaosMode(%d)", int(m))
	}
}

// ChaosConfig configures the chaos transport
type ChaosConfig struct {
	// Mode determines which type of chaos to inject
	Mode ChaosMode

	// FailureRate is the probability of failure in ChaosIntermittent mode (0.0 to 1.0)
	FailureRate float64

	// FailFirst limits chaos to the first N requests; later ones pass through.
	// Zero means every request.
	FailFirst int

	// PartialReadBytes is how many bytes are readable before the body fails
	PartialReadBytes int

	// Seed makes ChaosIntermittent reproducible
	Seed int64
}

// ChaosTransport wraps an http.RoundTripper and injects failures
type ChaosTransport struct {
	base   http.RoundTripper
	config ChaosConfig

	requests atomic.Uint64
	injected atomic.Uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewChaosTransport wraps base. A nil base uses http.DefaultTransport.
func NewChaosTransport(base http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &ChaosTransport{
		base:   base,
		config: config,
		rnd:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Set replaces the configuration and resets the counters.
func (c *ChaosTransport) Set(config ChaosConfig) {
	c.mu.Lock()
	c.config = config
	c.rnd = rand.New(rand.NewSource(config.Seed))
	c.requests.Store(0)
	c.injected.Store(0)
	c.mu.Unlock()
}

// Requests returns the number of requests seen.
func (c *ChaosTransport) Requests() int {
	return int(c.requests.Load())
}

// Injected returns the number of requests that received a failure.
func (c *ChaosTransport) Injected() int {
	return int(c.injected.Load())
}

func (c *ChaosTransport) pick(n uint64) (ChaosMode, ChaosConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config.FailFirst > 0 && n > uint64(c.config.FailFirst) {
		return ChaosNone, c.config
	}
	mode := c.config.Mode
	if mode != ChaosIntermittent {
		return mode, c.config
	}
	if c.rnd.Float64() >= c.config.FailureRate {
		return ChaosNone, c.config
	}
	modes := []ChaosMode{
		ChaosConnectionReset,
		ChaosPartialRead,
		ChaosEmptyBody,
		ChaosInvalidJSON,
		ChaosServerError,
	}
	return modes[c.rnd.Intn(len(modes))], c.config
}

// RoundTrip implements http.RoundTripper
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mode, config := c.pick(c.requests.Add(1))
	if mode != ChaosNone {
		c.injected.Add(1)
	}

	switch mode {
	case ChaosNone:
		return c.base.RoundTrip(req)

	case ChaosConnectionReset:
		return nil, errors.New("connection reset by peer")

	case ChaosDNSFailure:
		return nil, &DNSError{Err: "no such host", Server: "8.8.8.8"}

	case ChaosPartialRead:
		resp, err := c.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		partialSize := config.PartialReadBytes
		if partialSize <= 0 || partialSize >= len(bodyBytes) {
			partialSize = len(bodyBytes) / 2
		}
		resp.Body = &partialReadCloser{
			reader:    bytes.NewReader(bodyBytes[:partialSize]),
			failAfter: partialSize,
		}
		resp.ContentLength = -1
		return resp, nil

	case ChaosEmptyBody:
		return NewMockResponseBuilder().Build(req), nil

	case ChaosInvalidJSON:
		return NewMockResponseBuilder().WithBody(`{"status": "ok", "items": [`).Build(req), nil

	case ChaosServerError:
		return NewMockResponseBuilder().
			WithStatus(http.StatusServiceUnavailable).
			WithBody(`{"status":"fail","message":"Please wait a few minutes before you try again."}`).
			Build(req), nil

	case ChaosSentryBlock:
		return NewMockResponseBuilder().
			WithStatus(http.StatusBadRequest).
			WithBody(`{"status":"fail","error_type":"sentry_block","message":"Sorry, there was a problem with your request."}`).
			Build(req), nil

	default:
		return c.base.RoundTrip(req)
	}
}

// partialReadCloser is an io.ReadCloser that fails after reading a certain amount
type partialReadCloser struct {
	reader    io.Reader
	failAfter int
	totalRead int
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.totalRead >= p.failAfter {
		return 0, errors.New("connection reset during read")
	}
	n, err := p.reader.Read(buf)
	p.totalRead += n
	if p.totalRead >= p.failAfter {
		return n, errors.New("connection reset during read")
	}
	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

// DNSError simulates DNS lookup failures
type DNSError struct {
	Err    string
	Server string
}

func (e *DNSError) Error() string {
	return fmt.Sprintf("lookup failed: %s (server: %s)", e.Err, e.Server)
}

func (e *DNSError) Temporary() bool {
	return true
}

func (e *DNSError) Timeout() bool {
	return false
}

// MockResponseBuilder helps build custom mock responses
type MockResponseBuilder struct {
	status  int
	body    string
	headers map[string]string
}

// NewMockResponseBuilder creates a builder for an empty 200 response
func NewMockResponseBuilder() *MockResponseBuilder {
	return &MockResponseBuilder{
		status:  http.StatusOK,
		headers: map[string]string{"Content-Type": "application/json"},
	}
}

// WithStatus sets the HTTP status code
func (b *MockResponseBuilder) WithStatus(code int) *MockResponseBuilder {
	b.status = code
	return b
}

// WithBody sets the response body
func (b *MockResponseBuilder) WithBody(body string) *MockResponseBuilder {
	b.body = body
	return b
}

// WithHeader adds a header to the response
func (b *MockResponseBuilder) WithHeader(key, value string) *MockResponseBuilder {
	b.headers[key] = value
	return b
}

// Build creates the HTTP response
func (b *MockResponseBuilder) Build(req *http.Request) *http.Response {
	header := make(http.Header)
	for k, v := range b.headers {
		header.Set(k, v)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", b.status, http.StatusText(b.status)),
		StatusCode:    b.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(strings.NewReader(b.body)),
		ContentLength: int64(len(b.body)),
		Request:       req,
		Header:        header,
	}
}
