package internal

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

const csrfCookieName = "csrftoken"

// SessionState is the login state of a Session.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateAuthenticating
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session owns the login-related state of one client: the derived device identity,
// the user id, rank token and CSRF token, and the cookies of the last response.
// All fields change together under the lock; readers never see a half-applied login.
type Session struct {
	username    string
	password    string
	deviceID    string
	installUUID string

	jar     http.CookieJar
	baseURL *url.URL

	mu           sync.RWMutex
	state        SessionState
	userID       *int64
	rankToken    string
	csrfToken    string
	loggedInUser json.RawMessage
	lastCookies  []*http.Cookie
}

// NewSession creates an anonymous session. The install UUID is generated here
// and never recomputed for the lifetime of the session.
func NewSession(username, password string, jar http.CookieJar, baseURL *url.URL) *Session {
	return &Session{
		username:    username,
		password:    password,
		deviceID:    GenerateDeviceID(username, password),
		installUUID: GenerateUUID(true),
		jar:         jar,
		baseURL:     baseURL,
	}
}

func (s *Session) Username() string    { return s.username }
func (s *Session) Password() string    { return s.password }
func (s *Session) DeviceID() string    { return s.deviceID }
func (s *Session) InstallUUID() string { return s.installUUID }

// State returns the current login state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a login has completed and not been cleared.
func (s *Session) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// RequireAuthenticated fails fast when the session is not logged in.
func (s *Session) RequireAuthenticated(operation string) error {
	if !s.IsAuthenticated() {
		return &pkgerrs.AuthenticationRequiredError{Operation: operation}
	}
	return nil
}

// UserID returns the logged-in user's id, if known.
func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == nil {
		return 0, false
	}
	return *s.userID, true
}

// RankToken returns "{user_id}_{install_uuid}" once logged in, else "".
func (s *Session) RankToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rankToken
}

// LoggedInUser returns the raw user object from the login response.
func (s *Session) LoggedInUser() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedInUser
}

// CSRFToken returns the cached token, else the csrftoken cookie of the last
// response, else the csrftoken cookie held by the jar for the API host.
// An empty string means no token is known yet.
func (s *Session) CSRFToken() string {
	s.mu.RLock()
	cached := s.csrfToken
	last := s.lastCookies
	s.mu.RUnlock()

	if cached != "" {
		return cached
	}
	return s.cookieCSRFToken(last)
}

// cookieCSRFToken looks the token up in last, then in the jar.
func (s *Session) cookieCSRFToken(last []*http.Cookie) string {
	for _, c := range last {
		if c.Name == csrfCookieName && c.Value != "" {
			return c.Value
		}
	}
	if s.jar != nil && s.baseURL != nil {
		for _, c := range s.jar.Cookies(s.baseURL) {
			if c.Name == csrfCookieName && c.Value != "" {
				return c.Value
			}
		}
	}
	return ""
}

// RecordResponse remembers the cookies of the most recent response.
func (s *Session) RecordResponse(resp *http.Response) {
	if resp == nil {
		return
	}
	cookies := resp.Cookies()
	s.mu.Lock()
	s.lastCookies = cookies
	s.mu.Unlock()
}

// BeginLogin moves the session to Authenticating and forgets the previous
// user id and CSRF token, so a forced re-login does not send them.
func (s *Session) BeginLogin() {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.userID = nil
	s.rankToken = ""
	s.csrfToken = ""
	s.mu.Unlock()
}

// CompleteLogin atomically records a successful login and moves to Authenticated.
// The CSRF token is taken from the login response cookies, then the jar.
func (s *Session) CompleteLogin(userID int64, user json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	csrf := s.cookieCSRFToken(s.lastCookies)
	id := userID
	s.userID = &id
	s.rankToken = strconv.FormatInt(userID, 10) + "_" + s.installUUID
	s.csrfToken = csrf
	s.loggedInUser = user
	s.state = StateAuthenticated
}

// AbortLogin returns a failed login attempt to Anonymous.
func (s *Session) AbortLogin() {
	s.Clear()
}

// Clear drops every login-derived field and returns to Anonymous.
// Cookies stay in the jar; they belong to the transport.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = nil
	s.rankToken = ""
	s.csrfToken = ""
	s.loggedInUser = nil
	s.state = StateAnonymous
}
