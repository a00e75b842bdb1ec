package igapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

// DirectService handles direct messages.
type DirectService service

// Inbox returns the first page of the direct inbox.
func (s *DirectService) Inbox(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, directInbox, nil, nil)
}

// Thread returns one direct thread. cursor is empty for the newest messages.
func (s *DirectService) Thread(ctx context.Context, threadID, cursor string) (json.RawMessage, error) {
	var c any
	if cursor != "" {
		c = cursor
	}
	return s.client.call(ctx, directThread, internal.Params{"thread": threadID}, internal.Params{"cursor": c})
}

// ShareInbox returns posts shared with the logged-in user.
func (s *DirectService) ShareInbox(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, directShareInbox, nil, nil)
}

// SendText sends a text message to one or more users.
func (s *DirectService) SendText(ctx context.Context, text string, recipients []int64) (json.RawMessage, error) {
	if err := s.client.validator.ValidateRecipients(recipients); err != nil {
		return nil, err
	}
	return s.sendMultipart(ctx, directText, append(s.threadParts(recipients),
		internal.FormPart{Name: "text", Value: text},
	))
}

// SendShare shares a post with one or more users, with optional text.
func (s *DirectService) SendShare(ctx context.Context, mediaID string, recipients []int64, text string) (json.RawMessage, error) {
	if err := s.client.validator.ValidateMediaID(mediaID); err != nil {
		return nil, err
	}
	if err := s.client.validator.ValidateRecipients(recipients); err != nil {
		return nil, err
	}
	parts := []internal.FormPart{{Name: "media_id", Value: mediaID}}
	parts = append(parts, s.threadParts(recipients)...)
	parts = append(parts, internal.FormPart{Name: "text", Value: text})
	return s.sendMultipart(ctx, directMediaShare, parts)
}

// threadParts are the addressing fields shared by every broadcast.
func (s *DirectService) threadParts(recipients []int64) []internal.FormPart {
	return []internal.FormPart{
		{Name: "recipient_users", Value: recipientUsers(recipients)},
		{Name: "client_context", Value: s.client.session.InstallUUID()},
		{Name: "thread", Value: `["0"]`},
	}
}

// sendMultipart posts parts with the install UUID as the boundary.
func (s *DirectService) sendMultipart(ctx context.Context, e internal.Endpoint, parts []internal.FormPart) (json.RawMessage, error) {
	body, contentType, err := internal.BuildMultipart(s.client.session.InstallUUID(), parts)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "encode message", Err: err}
	}
	header := http.Header{}
	header.Set("Connection", "keep-alive")
	header.Set("Proxy-Connection", "keep-alive")
	resp, err := e.CallMultipart(ctx, s.client.dispatcher, nil, body, contentType, header)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// recipientUsers encodes recipients as [["id1","id2"]].
func recipientUsers(recipients []int64) string {
	ids := make([]string, len(recipients))
	for i, r := range recipients {
		ids[i] = strconv.Quote(strconv.FormatInt(r, 10))
	}
	return "[[" + strings.Join(ids, ",") + "]]"
}
