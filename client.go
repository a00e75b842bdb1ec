package igapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultBaseURL is the private mobile API root.
	DefaultBaseURL = "https://i.instagram.com/api/v1/"
	// DefaultUserAgent identifies the client as the Android app.
	DefaultUserAgent = "Instagram 10.26.0 Android (18/4.3; 320dpi; 720x1280; Xiaomi; HM 1SW; armani; qcom; en_US)"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// RateLimitConfig, RetryConfig and WaitConfig tune the request dispatcher.
type (
	RateLimitConfig = internal.RateLimitConfig
	RetryConfig     = internal.RetryConfig
	WaitConfig      = internal.WaitConfig
)

// Config holds the configuration for the Instagram client.
//
// Username and Password are required: the device id is derived from them, so
// they must be known before the first request.
//
// Example:
//
//	config := &Config{
//		Username: "alice",
//		Password: "secret",
//		Logger:   slog.Default(),
//	}
type Config struct {
	// Username and Password of the account to log in as. Username is the login
	// identifier and may also be the account's email address or phone number.
	Username string
	Password string

	// UserAgent sent with every request.
	// Defaults to DefaultUserAgent. Changing it without changing the rest of the
	// device fingerprint is likely to trip anti-automation checks.
	UserAgent string

	// BaseURL for the API.
	// Defaults to DefaultBaseURL if not specified. Tests point it at a fake server.
	BaseURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout and an in-memory cookie jar.
	// A custom client without a Jar works, but the CSRF token can then only be
	// read from the most recent response.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If nil, nothing is logged.
	Logger *slog.Logger

	// RateLimit paces outgoing requests. Nil uses the defaults.
	RateLimit *RateLimitConfig

	// Retry controls how transient failures are retried.
	Retry RetryConfig

	// Wait adds a random delay before each request. Disabled by default.
	Wait WaitConfig

	// MetricsRegisterer receives the dispatcher's Prometheus collectors.
	// Optional. If nil, no metrics are recorded.
	MetricsRegisterer prometheus.Registerer

	// WarmUpAfterLogin replays the calls the app makes right after login
	// (feature sync, timeline, inboxes). Failures are logged and ignored.
	WarmUpAfterLogin bool
}

// Client is the main Instagram API client.
//
// Endpoints are grouped into services that share the client's session:
//
//	client.Friends.Follow(ctx, userID)
//	client.Feed.Timeline(ctx)
//
// A Client is safe to share between goroutines in the sense that its session
// fields stay consistent, but requests issued concurrently have no ordering guarantee.
type Client struct {
	config     *Config
	session    *internal.Session
	dispatcher *internal.Dispatcher
	validator  *internal.Validator
	logger     *slog.Logger
	now        func() time.Time

	loginMu sync.Mutex

	common service

	Friends   *FriendsService
	Feed      *FeedService
	Media     *MediaService
	Direct    *DirectService
	Live      *LiveService
	Users     *UsersService
	Hashtags  *HashtagsService
	Locations *LocationsService
	Profile   *ProfileService
	Upload    *UploadService
	Misc      *MiscService
}

type service struct {
	client *Client
}

// NewClient creates a new Instagram client with the provided configuration.
// It validates the configuration, derives the device identity and prepares the
// request dispatcher. No request is sent; call Login before auth-gated calls.
//
// Returns a *errors.ConfigError if:
//   - config is nil
//   - Username or Password are missing, or Username holds a control character
//   - UserAgent or BaseURL are invalid
//   - the metrics collectors cannot be registered
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}

	validator := internal.NewValidator()
	if err := validator.ValidateCredentials(config.Username, config.Password); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if err := validator.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: "must be an absolute URL"}
	}
	if cfg.HTTPClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, &pkgerrs.ConfigError{Field: "HTTPClient", Message: err.Error()}
		}
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout, Jar: jar}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	metrics, err := internal.NewMetrics(cfg.MetricsRegisterer)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "MetricsRegisterer", Message: err.Error()}
	}

	session := internal.NewSession(cfg.Username, cfg.Password, cfg.HTTPClient.Jar, baseURL)
	dispatcher, err := internal.NewDispatcher(internal.DispatcherConfig{
		HTTPClient: cfg.HTTPClient,
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		Session:    session,
		RateLimit:  cfg.RateLimit,
		Retry:      cfg.Retry,
		Wait:       cfg.Wait,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:     &cfg,
		session:    session,
		dispatcher: dispatcher,
		validator:  validator,
		logger:     logger,
		now:        time.Now,
	}
	c.common.client = c
	c.Friends = (*FriendsService)(&c.common)
	c.Feed = (*FeedService)(&c.common)
	c.Media = (*MediaService)(&c.common)
	c.Direct = (*DirectService)(&c.common)
	c.Live = (*LiveService)(&c.common)
	c.Users = (*UsersService)(&c.common)
	c.Hashtags = (*HashtagsService)(&c.common)
	c.Locations = (*LocationsService)(&c.common)
	c.Profile = (*ProfileService)(&c.common)
	c.Upload = (*UploadService)(&c.common)
	c.Misc = (*MiscService)(&c.common)
	return c, nil
}

// Login authenticates the session. If the session is already authenticated and
// force is false, no request is sent and the cached login is returned.
//
// The handshake is a best-effort header fetch that seeds the CSRF cookie,
// followed by the signed credentials POST. On failure the session is left
// anonymous and the error is returned as *errors.AuthError, which unwraps to
// the underlying dispatcher error.
func (c *Client) Login(ctx context.Context, force bool) (*types.LoginResponse, error) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	if c.session.IsAuthenticated() && !force {
		return c.cachedLogin()
	}

	c.session.BeginLogin()

	if _, err := fetchHeaders.Call(ctx, c.dispatcher, nil, internal.Params{
		"challenge_type": "signup",
		"guid":           internal.GenerateUUID(false),
	}); err != nil {
		c.logger.Warn("pre-login header fetch failed", "error", err)
	}

	resp, err := login.Call(ctx, c.dispatcher, nil, internal.Params{
		"phone_id":            internal.GenerateUUID(true),
		"username":            c.session.Username(),
		"guid":                c.session.InstallUUID(),
		"device_id":           c.session.DeviceID(),
		"password":            c.session.Password(),
		"login_attempt_count": "0",
	})
	if err != nil {
		c.session.AbortLogin()
		return nil, &pkgerrs.AuthError{Username: c.session.Username(), Message: "login failed", Err: err}
	}

	var result types.LoginResponse
	if err := resp.Decode(&result); err != nil || result.LoggedInUser.PK == 0 {
		c.session.AbortLogin()
		if err == nil {
			err = errors.New("response has no logged_in_user.pk")
		}
		return nil, &pkgerrs.AuthError{
			Username: c.session.Username(),
			Message:  "unexpected login response",
			Err:      &pkgerrs.ParseError{Operation: "login", Err: err},
		}
	}

	raw, _ := resp.Raw("logged_in_user")
	c.session.CompleteLogin(int64(result.LoggedInUser.PK), raw)
	c.logger.Info("logged in", "user_id", int64(result.LoggedInUser.PK), "username", c.session.Username())

	if c.config.WarmUpAfterLogin {
		c.warmUp(ctx)
	}
	return &result, nil
}

func (c *Client) cachedLogin() (*types.LoginResponse, error) {
	result := &types.LoginResponse{Status: "ok"}
	if raw := c.session.LoggedInUser(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &result.LoggedInUser); err != nil {
			return nil, &pkgerrs.ParseError{Operation: "login", Message: "cached user", Err: err}
		}
	}
	return result, nil
}

// warmUp replays the app's post-login calls. Each one is independent and best-effort.
func (c *Client) warmUp(ctx context.Context) {
	calls := []struct {
		name string
		fn   func(context.Context) (json.RawMessage, error)
	}{
		{"sync_features", c.Misc.SyncFeatures},
		{"autocomplete_user_list", c.Friends.Autocomplete},
		{"timeline", c.Feed.Timeline},
		{"direct_inbox", c.Direct.Inbox},
		{"news_inbox", c.Misc.NewsInbox},
	}
	for _, call := range calls {
		if _, err := call.fn(ctx); err != nil {
			c.logger.Warn("post-login call failed", "call", call.name, "error", err)
		}
	}
}

// Logout ends the session. Calling it while anonymous is a no-op.
// Local session state is cleared even when the remote call fails; the remote
// error, if any, is still returned.
func (c *Client) Logout(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	if !c.session.IsAuthenticated() {
		return nil
	}

	_, err := logout.Call(ctx, c.dispatcher, nil, nil)
	c.session.Clear()
	if err != nil {
		c.logger.Warn("logout request failed, session cleared", "error", err)
		return err
	}
	c.logger.Info("logged out", "username", c.session.Username())
	return nil
}

// IsLoggedIn reports whether the session is authenticated.
func (c *Client) IsLoggedIn() bool {
	return c.session.IsAuthenticated()
}

// RequireAuthenticated returns *errors.AuthenticationRequiredError unless logged in.
// It is the guard every auth-gated call goes through.
func (c *Client) RequireAuthenticated(operation string) error {
	return c.session.RequireAuthenticated(operation)
}

// UserID returns the logged-in user's id.
func (c *Client) UserID() (int64, bool) {
	return c.session.UserID()
}

// RankToken returns the session's rank token, or "" before login.
func (c *Client) RankToken() string {
	return c.session.RankToken()
}

// CSRFToken returns the current CSRF token, or "" if none is known yet.
func (c *Client) CSRFToken() string {
	return c.session.CSRFToken()
}

// DeviceID returns the device id derived from the credentials.
func (c *Client) DeviceID() string {
	return c.session.DeviceID()
}

// InstallUUID returns the UUID generated for this client instance.
func (c *Client) InstallUUID() string {
	return c.session.InstallUUID()
}

// Username returns the configured account name.
func (c *Client) Username() string {
	return c.session.Username()
}

// call dispatches a declared endpoint and returns the raw response body.
func (c *Client) call(ctx context.Context, e internal.Endpoint, path, fields internal.Params) (json.RawMessage, error) {
	resp, err := e.Call(ctx, c.dispatcher, path, fields)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// callInto dispatches a declared endpoint and decodes one field of the response into v.
func (c *Client) callInto(ctx context.Context, e internal.Endpoint, path, fields internal.Params, key string, v any) error {
	resp, err := e.Call(ctx, c.dispatcher, path, fields)
	if err != nil {
		return err
	}
	if err := resp.DecodeField(key, v); err != nil {
		var parseErr *pkgerrs.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Operation = e.Template
			return parseErr
		}
		return &pkgerrs.ParseError{Operation: e.Template, Message: "field " + key, Err: err}
	}
	return nil
}

// userID returns the session's user id or an AuthenticationRequiredError.
func (c *Client) userID(operation string) (int64, error) {
	id, ok := c.session.UserID()
	if !ok {
		return 0, &pkgerrs.AuthenticationRequiredError{Operation: operation}
	}
	return id, nil
}
