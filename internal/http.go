package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig controls how requests are throttled before reaching the API.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

// RetryConfig controls how transient failures are retried.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, first one included. Defaults to 3 if zero.
	// Set to 1 to disable retries.
	MaxAttempts int
	// Interval is the fixed delay between attempts. Defaults to one second if zero.
	Interval time.Duration
}

// WaitConfig adds a random delay before each request. Disabled by default.
type WaitConfig struct {
	Enabled bool
	Min     time.Duration
	Max     time.Duration
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	DefaultMaxAttempts       = 3
	DefaultRetryInterval     = time.Second
	DefaultMaxWait           = 5 * time.Second
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64

	statusOK        = "ok"
	sentryBlockType = "sentry_block"
	maxErrorBody    = 2048

	outcomeOK          = "ok"
	outcomeClientError = "client_error"
	outcomeServerError = "server_error"
	outcomeSentryBlock = "sentry_block"
	outcomeMalformed   = "malformed"
	outcomeTransport   = "transport"
	outcomeOther       = "other"
)

// DefaultHeaders is the constant header set the Android app sends with every call.
func DefaultHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "en-US")
	h.Set("Connection", "close")
	h.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	h.Set("Cookie2", "$Version=1")
	h.Set("User-Agent", userAgent)
	h.Set("X-IG-Capabilities", "3Q4=")
	h.Set("X-IG-Connection-Type", "WIFI")
	return h
}

// Request describes one logical call. The dispatcher may send it several times.
type Request struct {
	// Path is resolved against the base URL unless RawURL is set.
	Path   string
	RawURL bool
	// Body is sent with POST; a nil Body means GET.
	Body []byte
	// ContentType overrides the default form content type for this call.
	ContentType string
	// Header overrides or extends the default header set for this call only.
	Header       http.Header
	RequiresAuth bool
	// SkipWait bypasses the random pre-request delay.
	SkipWait bool
}

// Response is a classified, successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	fields map[string]json.RawMessage
}

// NewResponse builds a Response from a raw JSON object. It is used by fakes and tests.
func NewResponse(statusCode int, body []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &pkgerrs.MalformedResponseError{StatusCode: statusCode, Body: truncate(body), Err: err}
	}
	return &Response{StatusCode: statusCode, Body: body, fields: fields}, nil
}

// Decode unmarshals the whole body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// DecodeField unmarshals one top-level field into v.
func (r *Response) DecodeField(key string, v any) error {
	raw, ok := r.Raw(key)
	if !ok {
		return &pkgerrs.ParseError{Message: "missing field " + strconv.Quote(key)}
	}
	return json.Unmarshal(raw, v)
}

// Raw returns a top-level field as raw JSON.
func (r *Response) Raw(key string) (json.RawMessage, bool) {
	if r == nil || r.fields == nil {
		return nil, false
	}
	raw, ok := r.fields[key]
	return raw, ok
}

// Bool reports the truthiness of a top-level field: true, a non-zero number,
// or a non-empty string. Missing and null fields are false.
func (r *Response) Bool(key string) bool {
	raw, ok := r.Raw(key)
	if !ok {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

// String returns a top-level string or number field as a string. Cursor tokens
// are strings on some endpoints and numbers on others.
func (r *Response) String(key string) string {
	raw, ok := r.Raw(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	return ""
}

// Status returns the envelope's status field.
func (r *Response) Status() string {
	return r.String("status")
}

// Dispatcher is the single chokepoint for outbound calls: it builds headers,
// sends GET/POST, classifies responses and retries transient failures.
type Dispatcher struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	header    http.Header
	session   *Session
	limiter   *rate.Limiter
	retry     RetryConfig
	wait      WaitConfig
	logger    *slog.Logger
	metrics   *Metrics

	sleep  func(context.Context, time.Duration) error
	jitter func(min, max time.Duration) time.Duration

	mu             sync.Mutex
	forceWaitUntil time.Time
}

// DispatcherConfig holds the dependencies of a Dispatcher.
type DispatcherConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Session    *Session
	RateLimit  *RateLimitConfig
	Retry      RetryConfig
	Wait       WaitConfig
	Logger     *slog.Logger
	Metrics    *Metrics
}

// NewDispatcher returns a dispatcher bound to one session.
// If a nil HTTPClient is provided, http.DefaultClient will be used.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.Session == nil {
		return nil, &pkgerrs.ConfigError{Field: "Session", Message: "session cannot be nil"}
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	rateCfg := cfg.RateLimit
	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultMaxAttempts
	}
	if retry.Interval == 0 {
		retry.Interval = DefaultRetryInterval
	}

	wait := cfg.Wait
	if wait.Enabled && wait.Max == 0 {
		wait.Max = DefaultMaxWait
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Dispatcher{
		client:    httpClient,
		BaseURL:   parsedURL,
		UserAgent: cfg.UserAgent,
		header:    DefaultHeaders(cfg.UserAgent),
		session:   cfg.Session,
		limiter:   buildLimiter(*rateCfg),
		retry:     retry,
		wait:      wait,
		logger:    logger,
		metrics:   cfg.Metrics,
		sleep:     sleepContext,
		jitter:    uniformJitter,
	}, nil
}

// Session returns the session this dispatcher sends on behalf of.
func (d *Dispatcher) Session() *Session {
	return d.session
}

// Send performs the request, retrying transient failures, and returns the parsed
// response or the last error. Auth-gated requests on an anonymous session fail
// before any network I/O.
func (d *Dispatcher) Send(ctx context.Context, req *Request) (*Response, error) {
	if req.RequiresAuth {
		if err := d.session.RequireAuthenticated(req.Path); err != nil {
			return nil, err
		}
	}

	target, err := d.resolve(req)
	if err != nil {
		return nil, err
	}

	if d.wait.Enabled && !req.SkipWait {
		delay := d.jitter(d.wait.Min, d.wait.Max)
		d.logger.Debug("waiting before request", "path", req.Path, "delay", delay)
		if err := d.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		resp, err := d.do(ctx, req, target)
		if err == nil {
			return resp, nil
		}

		if !pkgerrs.IsRetryable(err) || attempt >= d.retry.MaxAttempts || ctx.Err() != nil {
			return nil, err
		}

		d.logger.Warn("retrying request",
			"path", req.Path,
			"attempt", attempt,
			"max_attempts", d.retry.MaxAttempts,
			"error", err,
		)
		d.metrics.observeRetry(outcomeOf(err))

		if sleepErr := d.sleep(ctx, d.retry.Interval); sleepErr != nil {
			return nil, err
		}
	}
}

func (d *Dispatcher) resolve(req *Request) (string, error) {
	if req.RawURL {
		u, err := url.Parse(req.Path)
		if err != nil {
			return "", &pkgerrs.ClientError{Operation: "resolve url", Err: err}
		}
		return u.String(), nil
	}
	u, err := d.BaseURL.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return "", &pkgerrs.ClientError{Operation: "resolve url", Err: err}
	}
	return u.String(), nil
}

// do performs a single attempt.
func (d *Dispatcher) do(ctx context.Context, req *Request, target string) (*Response, error) {
	if err := d.waitForRateLimit(ctx); err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Path, Err: err}
	}

	method := http.MethodGet
	var body io.Reader
	if req.Body != nil {
		method = http.MethodPost
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "build request", Err: err}
	}
	d.applyHeaders(httpReq, req)

	d.logger.Debug("api request", "method", method, "path", req.Path)

	start := time.Now()
	resp, err := d.client.Do(httpReq)
	if err != nil {
		reqErr := &pkgerrs.RequestError{Operation: req.Path, URL: target, Err: err}
		d.metrics.observeAttempt(method, outcomeTransport, time.Since(start))
		return nil, reqErr
	}
	defer resp.Body.Close()

	d.session.RecordResponse(resp)
	d.applyRateHeaders(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		d.metrics.observeAttempt(method, outcomeTransport, time.Since(start))
		return nil, &pkgerrs.RequestError{Operation: req.Path, URL: target, Message: "failed to read response body", Err: err}
	}

	out, err := classify(resp, raw)
	d.metrics.observeAttempt(method, outcomeOf(err), time.Since(start))
	if err != nil {
		d.logger.Debug("api error", "method", method, "path", req.Path, "status", resp.StatusCode, "error", err)
	}
	return out, err
}

func (d *Dispatcher) applyHeaders(httpReq *http.Request, req *Request) {
	for k, vs := range d.header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	for k, vs := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
		httpReq.Header.Del("Host")
	}
}

// classify turns a raw HTTP response into a Response or a typed error.
// A 200 status alone is not success: the envelope's status must be "ok".
func classify(resp *http.Response, raw []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	jsonErr := json.Unmarshal(raw, &fields)

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		fields:     fields,
	}

	if resp.StatusCode == http.StatusOK {
		if jsonErr != nil {
			return nil, &pkgerrs.MalformedResponseError{StatusCode: resp.StatusCode, Body: truncate(raw), Err: jsonErr}
		}
		if status := out.Status(); status != statusOK {
			return nil, &pkgerrs.ResponseError{
				StatusCode: resp.StatusCode,
				Status:     status,
				Message:    out.String("message"),
				Body:       truncate(raw),
			}
		}
		return out, nil
	}

	if jsonErr != nil {
		return nil, &pkgerrs.ResponseError{StatusCode: resp.StatusCode, Body: truncate(raw)}
	}
	if out.String("error_type") == sentryBlockType {
		return nil, &pkgerrs.SentryBlockError{StatusCode: resp.StatusCode, Message: out.String("message")}
	}
	return nil, &pkgerrs.ResponseError{
		StatusCode: resp.StatusCode,
		Status:     out.Status(),
		Message:    out.String("message"),
		Body:       truncate(raw),
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	var sentry *pkgerrs.SentryBlockError
	var respErr *pkgerrs.ResponseError
	var malformed *pkgerrs.MalformedResponseError
	var reqErr *pkgerrs.RequestError
	switch {
	case errors.As(err, &sentry):
		return outcomeSentryBlock
	case errors.As(err, &respErr):
		if respErr.StatusCode >= 400 && respErr.StatusCode <= 499 {
			return outcomeClientError
		}
		return outcomeServerError
	case errors.As(err, &malformed):
		return outcomeMalformed
	case errors.As(err, &reqErr):
		return outcomeTransport
	default:
		return outcomeOther
	}
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody])
	}
	return string(b)
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (d *Dispatcher) waitForRateLimit(ctx context.Context) error {
	if err := d.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if d.limiter == nil {
		return nil
	}

	return d.limiter.Wait(ctx)
}

func (d *Dispatcher) waitForForcedDelay(ctx context.Context) error {
	for {
		d.mu.Lock()
		waitUntil := d.forceWaitUntil
		d.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			d.clearForcedDelay(waitUntil)
			return nil
		}

		if err := sleepContext(ctx, waitUntil.Sub(now)); err != nil {
			return err
		}
		d.clearForcedDelay(waitUntil)
	}
}

func (d *Dispatcher) clearForcedDelay(previous time.Time) {
	d.mu.Lock()
	if previous.Equal(d.forceWaitUntil) {
		d.forceWaitUntil = time.Time{}
	}
	d.mu.Unlock()
}

func (d *Dispatcher) applyRateHeaders(resp *http.Response) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return
	}
	if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
		d.deferRequests(time.Duration(seconds * float64(time.Second)))
	}
}

func (d *Dispatcher) deferRequests(delay time.Duration) {
	if delay <= 0 {
		return
	}

	until := time.Now().Add(delay)

	d.mu.Lock()
	if until.After(d.forceWaitUntil) {
		d.forceWaitUntil = until
	}
	d.mu.Unlock()
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func uniformJitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}
