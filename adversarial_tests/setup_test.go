package adversarial_tests

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	igapi "github.com/jamesprial/go-instagram-api-wrapper"
	"github.com/jamesprial/go-instagram-api-wrapper/test_helpers"
)

const loginBody = `{"status":"ok","logged_in_user":{"pk":555,"username":"alice"}}`

// newServer starts a mock API with the login handshake routed.
func newServer(t *testing.T) *test_helpers.MockServer {
	t.Helper()
	ms := test_helpers.NewMockServer()
	t.Cleanup(ms.Close)
	ms.SetCSRFToken("csrf-token")
	ms.SetJSON(http.MethodGet, "si/fetch_headers/", `{"status":"ok"}`)
	ms.SetJSON(http.MethodPost, "accounts/login/", loginBody)
	return ms
}

// newClient returns a client for ms whose transport is wrapped by wrap, if set.
// Retries run with a 1ms interval.
func newClient(t *testing.T, ms *test_helpers.MockServer, attempts int, wrap func(http.RoundTripper) http.RoundTripper) *igapi.Client {
	t.Helper()
	jar, _ := cookiejar.New(nil)
	transport := ms.Client().Transport
	if wrap != nil {
		transport = wrap(transport)
	}
	c, err := igapi.NewClient(&igapi.Config{
		Username:   "alice",
		Password:   "secret",
		BaseURL:    ms.BaseURL(),
		HTTPClient: &http.Client{Jar: jar, Transport: transport, Timeout: 5 * time.Second},
		RateLimit:  &igapi.RateLimitConfig{RequestsPerMinute: 600000, Burst: 10000},
		Retry:      igapi.RetryConfig{MaxAttempts: attempts, Interval: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func login(t *testing.T, ms *test_helpers.MockServer, c *igapi.Client) {
	t.Helper()
	if _, err := c.Login(context.Background(), false); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	ms.ClearLog()
}

// clientCalls wraps single-object calls with fixed arguments.
type clientCalls struct {
	c *igapi.Client
}

func (cc *clientCalls) userInfo(ctx context.Context) error {
	_, err := cc.c.Users.Info(ctx, 9)
	return err
}

func (cc *clientCalls) mediaInfo(ctx context.Context) error {
	_, err := cc.c.Media.Info(ctx, "17_555")
	return err
}

func (cc *clientCalls) comment(ctx context.Context) error {
	_, err := cc.c.Media.Comment(ctx, "17_555", "hi")
	return err
}
