package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

// Caller is what an Endpoint needs to dispatch: a sender and the session whose
// identity goes into every envelope. *Dispatcher implements it.
type Caller interface {
	Send(ctx context.Context, req *Request) (*Response, error)
	Session() *Session
}

// Params carries path parameters, query parameters or payload fields.
// Nil values and nil pointers are treated as absent.
type Params map[string]any

// Endpoint is one declared API call: a URL template plus the constant parts of
// the call (method, auth requirement, ranked-query decoration). Endpoints are
// declared once as package-level values and called with per-call parameters.
type Endpoint struct {
	Template     string
	Method       string
	Ranked       bool
	RequiresAuth bool
}

// EndpointOption adjusts an Endpoint declaration.
type EndpointOption func(*Endpoint)

// Ranked adds ranked_content=true and the session's rank token to the query.
func Ranked() EndpointOption {
	return func(e *Endpoint) { e.Ranked = true }
}

// Anonymous lets the endpoint be called before login.
func Anonymous() EndpointOption {
	return func(e *Endpoint) { e.RequiresAuth = false }
}

// GET declares a read endpoint.
func GET(template string, opts ...EndpointOption) Endpoint {
	return declare(template, http.MethodGet, opts)
}

// POST declares a signed write endpoint.
func POST(template string, opts ...EndpointOption) Endpoint {
	return declare(template, http.MethodPost, opts)
}

func declare(template, method string, opts []EndpointOption) Endpoint {
	e := Endpoint{Template: template, Method: method, RequiresAuth: true}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Path substitutes {name} placeholders in the template. A placeholder with no
// value is a programming error and yields *errors.TemplateError.
func (e Endpoint) Path(path Params) (string, error) {
	var b strings.Builder
	rest := e.Template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", &pkgerrs.TemplateError{Template: e.Template, Message: "unterminated placeholder"}
		}
		end += open

		name := rest[open+1 : end]
		value, ok := formatValue(path[name])
		if !ok {
			return "", &pkgerrs.TemplateError{Template: e.Template, Param: name}
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[end+1:]
	}
	return b.String(), nil
}

// Call dispatches the endpoint. For GET, fields become query parameters; for POST
// they are merged into the signed envelope.
func (e Endpoint) Call(ctx context.Context, c Caller, path, fields Params) (*Response, error) {
	uri, err := e.Path(path)
	if err != nil {
		return nil, err
	}

	if e.Method == http.MethodGet {
		return c.Send(ctx, &Request{
			Path:         e.withQuery(uri, c.Session(), fields),
			RequiresAuth: e.RequiresAuth,
		})
	}

	body, err := SignedBody(c.Session(), fields)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, &Request{
		Path:         uri,
		Body:         []byte(body),
		RequiresAuth: e.RequiresAuth,
	})
}

// CallMultipart dispatches a pre-encoded multipart body through the same auth and
// retry path. header applies to this call only.
func (e Endpoint) CallMultipart(ctx context.Context, c Caller, path Params, body []byte, contentType string, header http.Header) (*Response, error) {
	uri, err := e.Path(path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = []byte{}
	}
	return c.Send(ctx, &Request{
		Path:         uri,
		Body:         body,
		ContentType:  contentType,
		Header:       header,
		RequiresAuth: e.RequiresAuth,
	})
}

func (e Endpoint) withQuery(uri string, s *Session, query Params) string {
	q := url.Values{}
	if e.Ranked {
		q.Set("ranked_content", "true")
		q.Set("rank_token", s.RankToken())
	}
	for k, v := range query {
		if value, ok := formatValue(v); ok {
			q.Set(k, value)
		}
	}
	if len(q) == 0 {
		return uri
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + q.Encode()
}

// Envelope returns the mandatory fields of every signed body: _uuid, and once
// known, _csrftoken and _uid. fields override envelope entries of the same name.
func Envelope(s *Session, fields Params) map[string]any {
	data := map[string]any{"_uuid": s.InstallUUID()}
	if csrf := s.CSRFToken(); csrf != "" {
		data["_csrftoken"] = csrf
	}
	if uid, ok := s.UserID(); ok {
		data["_uid"] = uid
	}
	for k, v := range fields {
		if isNil(v) {
			continue
		}
		data[k] = v
	}
	return data
}

// SignedBody serializes the envelope and wraps it with GenerateSignature.
// The signature is computed on every call since envelope fields vary.
func SignedBody(s *Session, fields Params) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Envelope(s, fields)); err != nil {
		return "", &pkgerrs.ClientError{Operation: "encode payload", Err: err}
	}
	return GenerateSignature(strings.TrimSuffix(buf.String(), "\n")), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// formatValue renders a parameter for a URL. It reports false for absent values.
func formatValue(v any) (string, bool) {
	if isNil(v) {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		v = rv.Elem().Interface()
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
