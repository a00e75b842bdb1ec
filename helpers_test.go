package igapi

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/jamesprial/go-instagram-api-wrapper/test_helpers"
)

const testLoginBody = `{"status":"ok","logged_in_user":{"pk":555,"username":"alice","full_name":"Alice"}}`

var testNow = time.Unix(1700000000, 0)

// newTestClient returns a client pointed at ms with retries off and no throttling.
func newTestClient(t *testing.T, ms *test_helpers.MockServer, mutate ...func(*Config)) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	cfg := &Config{
		Username:   "alice",
		Password:   "secret",
		BaseURL:    ms.BaseURL(),
		HTTPClient: &http.Client{Jar: jar, Timeout: 5 * time.Second},
		RateLimit:  &RateLimitConfig{RequestsPerMinute: 60000, Burst: 1000},
		Retry:      RetryConfig{MaxAttempts: 1},
	}
	for _, m := range mutate {
		m(cfg)
	}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.now = func() time.Time { return testNow }
	return c
}

// newMockServer starts a fake API with the login handshake routes registered.
func newMockServer(t *testing.T) *test_helpers.MockServer {
	t.Helper()
	ms := test_helpers.NewMockServer()
	t.Cleanup(ms.Close)
	ms.SetCSRFToken("abc123")
	ms.SetJSON(http.MethodGet, "si/fetch_headers/", `{"status":"ok"}`)
	ms.SetJSON(http.MethodPost, "accounts/login/", testLoginBody)
	return ms
}

// loggedInClient returns a client that has completed the login handshake
// against ms. The request log is cleared afterwards.
func loggedInClient(t *testing.T, ms *test_helpers.MockServer, mutate ...func(*Config)) *Client {
	t.Helper()
	c := newTestClient(t, ms, mutate...)
	if _, err := c.Login(context.Background(), false); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	ms.ClearLog()
	return c
}

func signedPayload(t *testing.T, body []byte) map[string]any {
	t.Helper()
	signed, err := test_helpers.DecodeSignedBody(body)
	if err != nil {
		t.Fatalf("DecodeSignedBody: %v", err)
	}
	if signed.KeyVersion != "4" {
		t.Errorf("expected key version 4, got %q", signed.KeyVersion)
	}
	return signed.Payload
}
