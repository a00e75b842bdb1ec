package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// LiveService controls live broadcasts.
type LiveService service

// BroadcastOptions configures a new broadcast. Zero sizes default to 1080x1920.
type BroadcastOptions struct {
	PreviewWidth  int
	PreviewHeight int
	Message       string
}

// Create reserves a broadcast and returns its RTMP upload URL.
func (s *LiveService) Create(ctx context.Context, opts BroadcastOptions) (*types.Broadcast, error) {
	if opts.PreviewWidth == 0 {
		opts.PreviewWidth = 1080
	}
	if opts.PreviewHeight == 0 {
		opts.PreviewHeight = 1920
	}
	resp, err := liveCreate.Call(ctx, s.client.dispatcher, nil, internal.Params{
		"preview_height":    opts.PreviewHeight,
		"preview_width":     opts.PreviewWidth,
		"broadcast_message": opts.Message,
		"broadcast_type":    "RTMP",
		"internal_only":     0,
	})
	if err != nil {
		return nil, err
	}
	var b types.Broadcast
	if err := resp.Decode(&b); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "live/create/", Err: err}
	}
	return &b, nil
}

// Start makes a created broadcast visible.
func (s *LiveService) Start(ctx context.Context, broadcastID int64, notify bool) (json.RawMessage, error) {
	if err := s.client.validator.ValidateID("broadcast_id", broadcastID); err != nil {
		return nil, err
	}
	n := 0
	if notify {
		n = 1
	}
	return s.client.call(ctx, liveStart, internal.Params{"broadcast_id": broadcastID}, internal.Params{"should_send_notifications": n})
}

// End stops a running broadcast.
func (s *LiveService) End(ctx context.Context, broadcastID int64) (json.RawMessage, error) {
	return s.broadcast(ctx, liveEnd, broadcastID)
}

// AddToPostLive keeps an ended broadcast available for replay.
// The broadcast must be ended first.
func (s *LiveService) AddToPostLive(ctx context.Context, broadcastID int64) (json.RawMessage, error) {
	return s.broadcast(ctx, liveAddToPost, broadcastID)
}

func (s *LiveService) broadcast(ctx context.Context, e internal.Endpoint, broadcastID int64) (json.RawMessage, error) {
	if err := s.client.validator.ValidateID("broadcast_id", broadcastID); err != nil {
		return nil, err
	}
	return s.client.call(ctx, e, internal.Params{"broadcast_id": broadcastID}, nil)
}
