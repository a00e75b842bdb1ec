package test_helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// APIPrefix is the path the fake serves the API under.
const APIPrefix = "/api/v1/"

// MockServer is a fake Instagram API. Routes are registered with gorilla/mux
// templates, so "friendships/{user_id}/followers/" matches any user id.
// Every request is recorded, matched or not.
type MockServer struct {
	server *httptest.Server
	router *mux.Router

	mu         sync.Mutex
	routes     map[string]*mockRoute
	requestLog []RequestEntry
	csrfToken  string
}

// RequestEntry is one recorded request.
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Vars      map[string]string
	Headers   http.Header
	Body      []byte
	Timestamp time.Time
}

// MockResponse defines a canned response.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

type mockRoute struct {
	responses []*MockResponse
	calls     int
}

// next returns the response for the current call. The last response repeats.
func (r *mockRoute) next() *MockResponse {
	resp := r.responses[min(r.calls, len(r.responses)-1)]
	r.calls++
	return resp
}

// NewMockServer starts a fake API server. Close it when done.
func NewMockServer() *MockServer {
	ms := &MockServer{
		router: mux.NewRouter(),
		routes: make(map[string]*mockRoute),
	}
	ms.router.NotFoundHandler = http.HandlerFunc(ms.notFound)
	ms.router.MethodNotAllowedHandler = http.HandlerFunc(ms.notFound)
	ms.server = httptest.NewServer(ms.router)
	return ms
}

// URL returns the server root.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// BaseURL returns the API base URL to configure a client with.
func (ms *MockServer) BaseURL() string {
	return ms.server.URL + APIPrefix
}

// Client returns an HTTP client that trusts the server.
func (ms *MockServer) Client() *http.Client {
	return ms.server.Client()
}

// Close shuts down the server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetCSRFToken makes every response set the csrftoken cookie to token.
func (ms *MockServer) SetCSRFToken(token string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.csrfToken = token
}

// SetResponse configures the responses for method and path, path being relative
// to APIPrefix. Successive calls get successive responses; the last one repeats.
func (ms *MockServer) SetResponse(method, path string, responses ...*MockResponse) {
	if len(responses) == 0 {
		panic("SetResponse needs at least one response")
	}
	key := method + " " + path

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if route, ok := ms.routes[key]; ok {
		route.responses = responses
		route.calls = 0
		return
	}
	route := &mockRoute{responses: responses}
	ms.routes[key] = route
	ms.router.HandleFunc(APIPrefix+strings.TrimPrefix(path, "/"), func(w http.ResponseWriter, r *http.Request) {
		ms.serve(w, r, route)
	}).Methods(method)
}

// SetJSON is SetResponse with a single 200 response.
func (ms *MockServer) SetJSON(method, path, body string) {
	ms.SetResponse(method, path, &MockResponse{Status: http.StatusOK, Body: body})
}

// Requests returns the recorded requests.
func (ms *MockServer) Requests() []RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RequestEntry(nil), ms.requestLog...)
}

// RequestsTo returns the recorded requests whose path is APIPrefix+path.
func (ms *MockServer) RequestsTo(method, path string) []RequestEntry {
	want := APIPrefix + strings.TrimPrefix(path, "/")
	var out []RequestEntry
	for _, e := range ms.Requests() {
		if e.Method == method && e.Path == want {
			out = append(out, e)
		}
	}
	return out
}

// CallCount returns the number of requests to method and path.
func (ms *MockServer) CallCount(method, path string) int {
	return len(ms.RequestsTo(method, path))
}

// ClearLog forgets recorded requests and rewinds every response sequence.
func (ms *MockServer) ClearLog() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requestLog = ms.requestLog[:0]
	for _, route := range ms.routes {
		route.calls = 0
	}
}

func (ms *MockServer) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Vars:      mux.Vars(r),
		Headers:   r.Header.Clone(),
		Body:      body,
		Timestamp: time.Now(),
	}
	ms.mu.Lock()
	ms.requestLog = append(ms.requestLog, entry)
	ms.mu.Unlock()
}

func (ms *MockServer) serve(w http.ResponseWriter, r *http.Request, route *mockRoute) {
	ms.record(r)

	ms.mu.Lock()
	resp := route.next()
	csrf := ms.csrfToken
	ms.mu.Unlock()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	ms.write(w, csrf, resp)
}

func (ms *MockServer) notFound(w http.ResponseWriter, r *http.Request) {
	ms.record(r)
	ms.mu.Lock()
	csrf := ms.csrfToken
	ms.mu.Unlock()
	ms.write(w, csrf, &MockResponse{
		Status: http.StatusNotFound,
		Body:   fmt.Sprintf(`{"status":"fail","message":"no route for %s %s"}`, r.Method, r.URL.Path),
	})
}

func (ms *MockServer) write(w http.ResponseWriter, csrf string, resp *MockResponse) {
	if csrf != "" {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: csrf, Path: "/"})
	}
	w.Header().Set("Content-Type", "application/json")
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write([]byte(resp.Body))
}

// SignedBody is a decoded signed request body.
type SignedBody struct {
	KeyVersion string
	Signature  string
	Payload    map[string]any
}

// DecodeSignedBody parses "ig_sig_key_version=<v>&signed_body=<hex>.<json>".
func DecodeSignedBody(body []byte) (*SignedBody, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	signed := form.Get("signed_body")
	sig, payload, ok := strings.Cut(signed, ".")
	if !ok {
		return nil, fmt.Errorf("signed_body has no separator: %q", signed)
	}
	out := &SignedBody{KeyVersion: form.Get("ig_sig_key_version"), Signature: sig}
	if err := json.Unmarshal([]byte(payload), &out.Payload); err != nil {
		return nil, fmt.Errorf("signed_body payload: %w", err)
	}
	return out, nil
}
