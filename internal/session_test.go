package internal

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

func TestSession_Lifecycle(t *testing.T) {
	s := newTestSession(t, false)

	if s.State() != StateAnonymous {
		t.Fatalf("expected new session to be anonymous, got %v", s.State())
	}
	if _, ok := s.UserID(); ok {
		t.Error("expected no user id before login")
	}
	if s.RankToken() != "" {
		t.Error("expected empty rank token before login")
	}
	var authErr *pkgerrs.AuthenticationRequiredError
	if err := s.RequireAuthenticated("feed"); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationRequiredError, got %v", err)
	}

	s.BeginLogin()
	if s.State() != StateAuthenticating {
		t.Fatalf("expected authenticating, got %v", s.State())
	}
	if s.IsAuthenticated() {
		t.Error("authenticating session must not count as logged in")
	}

	s.CompleteLogin(555, json.RawMessage(`{"pk":555}`))
	if !s.IsAuthenticated() {
		t.Fatal("expected authenticated session")
	}
	if id, ok := s.UserID(); !ok || id != 555 {
		t.Errorf("expected user id 555, got %d %v", id, ok)
	}
	if want := "555_" + s.InstallUUID(); s.RankToken() != want {
		t.Errorf("expected rank token %q, got %q", want, s.RankToken())
	}
	if string(s.LoggedInUser()) != `{"pk":555}` {
		t.Errorf("unexpected logged in user %s", s.LoggedInUser())
	}

	s.Clear()
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous after clear, got %v", s.State())
	}
	if _, ok := s.UserID(); ok || s.RankToken() != "" || s.LoggedInUser() != nil {
		t.Error("expected login-derived fields to be cleared")
	}
}

func TestSession_AbortLogin(t *testing.T) {
	s := newTestSession(t, false)
	s.BeginLogin()
	s.AbortLogin()
	if s.State() != StateAnonymous {
		t.Errorf("expected anonymous after abort, got %v", s.State())
	}
}

func TestSession_IdentityIsStable(t *testing.T) {
	s := newTestSession(t, false)
	uuid := s.InstallUUID()

	s.BeginLogin()
	s.CompleteLogin(1, nil)
	s.Clear()

	if s.InstallUUID() != uuid {
		t.Error("install UUID must not change across logins")
	}
	if s.DeviceID() != GenerateDeviceID("alice", "secret") {
		t.Errorf("unexpected device id %q", s.DeviceID())
	}
}

func TestSession_CSRFTokenSources(t *testing.T) {
	base, _ := url.Parse(testBaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	s := NewSession("alice", "secret", jar, base)

	if got := s.CSRFToken(); got != "" {
		t.Errorf("expected no token yet, got %q", got)
	}

	jar.SetCookies(base, []*http.Cookie{{Name: "csrftoken", Value: "from-jar"}})
	if got := s.CSRFToken(); got != "from-jar" {
		t.Errorf("expected jar token, got %q", got)
	}

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "csrftoken=from-response; Path=/")
	s.RecordResponse(resp)
	if got := s.CSRFToken(); got != "from-response" {
		t.Errorf("expected last-response token to win over the jar, got %q", got)
	}

	s.BeginLogin()
	s.CompleteLogin(555, nil)

	resp = &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "csrftoken=later; Path=/")
	s.RecordResponse(resp)
	if got := s.CSRFToken(); got != "from-response" {
		t.Errorf("expected token cached at login, got %q", got)
	}
}

func TestSession_ReloginReplacesToken(t *testing.T) {
	s := newTestSession(t, false)
	record := func(token string) {
		resp := &http.Response{Header: http.Header{}}
		resp.Header.Add("Set-Cookie", "csrftoken="+token+"; Path=/")
		s.RecordResponse(resp)
	}

	record("first")
	s.BeginLogin()
	s.CompleteLogin(555, nil)

	s.BeginLogin()
	if _, ok := s.UserID(); ok {
		t.Error("expected user id to be dropped when a new login starts")
	}
	if s.RankToken() != "" {
		t.Error("expected rank token to be dropped when a new login starts")
	}
	if s.State() != StateAuthenticating {
		t.Fatalf("expected authenticating, got %v", s.State())
	}

	record("second")
	if got := s.CSRFToken(); got != "second" {
		t.Errorf("expected token of the login response during login, got %q", got)
	}
	s.CompleteLogin(556, nil)
	if got := s.CSRFToken(); got != "second" {
		t.Errorf("expected token of the new login, got %q", got)
	}
}

func TestSessionState_String(t *testing.T) {
	tests := map[SessionState]string{
		StateAnonymous:      "anonymous",
		StateAuthenticating: "authenticating",
		StateAuthenticated:  "authenticated",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
