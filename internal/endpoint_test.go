package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

// recordingCaller captures requests instead of sending them.
type recordingCaller struct {
	session  *Session
	requests []*Request
}

func (c *recordingCaller) Send(_ context.Context, req *Request) (*Response, error) {
	c.requests = append(c.requests, req)
	return NewResponse(http.StatusOK, []byte(`{"status":"ok"}`))
}

func (c *recordingCaller) Session() *Session { return c.session }

func decodeSigned(t *testing.T, body []byte) map[string]any {
	t.Helper()
	if !signedBodyPattern.Match(body) {
		t.Fatalf("body is not a signed envelope: %s", body)
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		t.Fatalf("parse signed body: %v", err)
	}
	_, payload, _ := strings.Cut(form.Get("signed_body"), ".")
	var out map[string]any
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		t.Fatalf("decode payload %q: %v", payload, err)
	}
	return out
}

func TestEndpoint_Declarations(t *testing.T) {
	get := GET("feed/timeline/")
	if get.Method != http.MethodGet || !get.RequiresAuth || get.Ranked {
		t.Errorf("unexpected GET declaration %+v", get)
	}
	post := POST("accounts/login/", Anonymous())
	if post.Method != http.MethodPost || post.RequiresAuth {
		t.Errorf("unexpected anonymous POST declaration %+v", post)
	}
	ranked := GET("friendships/{user_id}/followers/", Ranked())
	if !ranked.Ranked {
		t.Error("expected Ranked option to apply")
	}
}

func TestEndpoint_Path(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   Params
		want     string
		wantErr  string
	}{
		{name: "no placeholders", template: "feed/timeline/", want: "feed/timeline/"},
		{name: "int64", template: "users/{user_id}/info/", params: Params{"user_id": int64(42)}, want: "users/42/info/"},
		{name: "string", template: "media/{media_id}/info/", params: Params{"media_id": "1_2"}, want: "media/1_2/info/"},
		{name: "two placeholders", template: "media/{media_id}/comment/{comment_id}/delete/", params: Params{"media_id": "1", "comment_id": 9}, want: "media/1/comment/9/delete/"},
		{name: "escaped", template: "feed/tag/{tag}/", params: Params{"tag": "a/b"}, want: "feed/tag/a%2Fb/"},
		{name: "missing", template: "users/{user_id}/info/", wantErr: "user_id"},
		{name: "nil pointer", template: "users/{user_id}/info/", params: Params{"user_id": (*int64)(nil)}, wantErr: "user_id"},
		{name: "unterminated", template: "users/{user_id/info/", params: Params{"user_id": 1}, wantErr: "unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GET(tt.template).Path(tt.params)
			if tt.wantErr != "" {
				var tmplErr *pkgerrs.TemplateError
				if !errors.As(err, &tmplErr) {
					t.Fatalf("expected TemplateError, got %T (%v)", err, err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error mentioning %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Path returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEndpoint_CallGET(t *testing.T) {
	c := &recordingCaller{session: newTestSession(t, true)}
	maxID := "token"

	_, err := GET("friendships/{user_id}/followers/", Ranked()).Call(context.Background(), c,
		Params{"user_id": int64(7)},
		Params{"max_id": &maxID, "skipped": nil, "query": "a b"})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}

	req := c.requests[0]
	if req.Body != nil {
		t.Error("GET must not carry a body")
	}
	if !req.RequiresAuth {
		t.Error("expected auth gate on GET")
	}
	path, rawQuery, ok := strings.Cut(req.Path, "?")
	if !ok || path != "friendships/7/followers/" {
		t.Fatalf("unexpected path %q", req.Path)
	}
	q, _ := url.ParseQuery(rawQuery)
	if q.Get("ranked_content") != "true" {
		t.Error("expected ranked_content=true")
	}
	if want := "555_" + c.session.InstallUUID(); q.Get("rank_token") != want {
		t.Errorf("expected rank_token %q, got %q", want, q.Get("rank_token"))
	}
	if q.Get("max_id") != "token" || q.Get("query") != "a b" {
		t.Errorf("unexpected query %v", q)
	}
	if q.Has("skipped") {
		t.Error("nil values must be skipped")
	}
}

func TestEndpoint_CallGETAppendsToExistingQuery(t *testing.T) {
	c := &recordingCaller{session: newTestSession(t, true)}
	if _, err := GET("feed/popular/?people_teaser_supported=1").Call(context.Background(), c, nil, Params{"max_id": "m"}); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if got := c.requests[0].Path; got != "feed/popular/?people_teaser_supported=1&max_id=m" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestEndpoint_CallPOSTSignsEnvelope(t *testing.T) {
	c := &recordingCaller{session: newTestSession(t, true)}

	_, err := POST("friendships/create/{user_id}/").Call(context.Background(), c,
		Params{"user_id": int64(9)},
		Params{"user_id": int64(9), "radio_type": "wifi-none", "absent": nil})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}

	req := c.requests[0]
	if req.Path != "friendships/create/9/" {
		t.Errorf("unexpected path %q", req.Path)
	}
	payload := decodeSigned(t, req.Body)
	if payload["_uuid"] != c.session.InstallUUID() {
		t.Errorf("expected _uuid %q, got %v", c.session.InstallUUID(), payload["_uuid"])
	}
	if payload["_uid"] != float64(555) {
		t.Errorf("expected _uid 555, got %v", payload["_uid"])
	}
	if payload["radio_type"] != "wifi-none" || payload["user_id"] != float64(9) {
		t.Errorf("expected caller fields in payload, got %v", payload)
	}
	if _, ok := payload["absent"]; ok {
		t.Error("nil fields must be omitted")
	}
}

func TestEnvelope_AnonymousSession(t *testing.T) {
	s := newTestSession(t, false)
	data := Envelope(s, Params{"username": "alice"})

	if data["_uuid"] != s.InstallUUID() {
		t.Error("expected _uuid even before login")
	}
	if _, ok := data["_uid"]; ok {
		t.Error("expected no _uid before login")
	}
	if _, ok := data["_csrftoken"]; ok {
		t.Error("expected no _csrftoken while unknown")
	}
	if data["username"] != "alice" {
		t.Error("expected caller field")
	}
}

func TestEnvelope_FieldsOverride(t *testing.T) {
	s := newTestSession(t, true)
	data := Envelope(s, Params{"_uuid": "custom"})
	if data["_uuid"] != "custom" {
		t.Errorf("expected caller field to override envelope, got %v", data["_uuid"])
	}
}

func TestSignedBody_DoesNotEscapeHTML(t *testing.T) {
	body, err := SignedBody(newTestSession(t, false), Params{"text": "<b>&"})
	if err != nil {
		t.Fatalf("SignedBody returned error: %v", err)
	}
	payload := decodeSigned(t, []byte(body))
	if payload["text"] != "<b>&" {
		t.Errorf("unexpected text %v", payload["text"])
	}
	if strings.Contains(body, "u003c") {
		t.Error("expected HTML characters to stay literal before percent-encoding")
	}
}

func TestEndpoint_CallMultipart(t *testing.T) {
	c := &recordingCaller{session: newTestSession(t, true)}
	header := http.Header{}
	header.Set("Connection", "keep-alive")

	_, err := POST("direct_v2/threads/broadcast/{kind}/").CallMultipart(context.Background(), c,
		Params{"kind": "text"}, nil, "multipart/form-data; boundary=b", header)
	if err != nil {
		t.Fatalf("CallMultipart returned error: %v", err)
	}

	req := c.requests[0]
	if req.Path != "direct_v2/threads/broadcast/text/" {
		t.Errorf("unexpected path %q", req.Path)
	}
	if req.Body == nil {
		t.Error("expected a non-nil body so the request is a POST")
	}
	if req.ContentType != "multipart/form-data; boundary=b" || req.Header.Get("Connection") != "keep-alive" {
		t.Errorf("unexpected request %+v", req)
	}
}
