package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// Feed lists flag continuation with more_available instead of big_list.
const feedHasMoreKey = "more_available"

// FeedService handles timeline, user, hashtag and location feeds.
type FeedService service

// Stories returns the current story reel of userID.
func (s *FeedService) Stories(ctx context.Context, userID int64) (json.RawMessage, error) {
	return s.client.call(ctx, feedStories, internal.Params{"user_id": userID}, nil)
}

// Saved returns the logged-in user's saved posts.
func (s *FeedService) Saved(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, feedSaved, nil, nil)
}

// Timeline returns the first page of the home timeline.
func (s *FeedService) Timeline(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, feedTimeline, nil, nil)
}

// Popular returns the popular feed.
func (s *FeedService) Popular(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, feedPopular, nil, internal.Params{"people_teaser_supported": 1})
}

// User pages through the posts of userID. A non-zero minTimestamp restricts the
// feed to posts taken after it.
func (s *FeedService) User(ctx context.Context, userID int64, minTimestamp int64, opts *ListOptions) *Cursor[types.Media] {
	query := internal.Params{}
	if minTimestamp > 0 {
		query["min_timestamp"] = minTimestamp
	}
	return newCursor[types.Media](ctx, s.client, listSpec{
		endpoint:   feedUser,
		path:       internal.Params{"user_id": userID},
		query:      query,
		itemsKey:   "items",
		hasMoreKey: feedHasMoreKey,
	}, opts)
}

// Hashtag pages through posts tagged with tag (without the '#').
func (s *FeedService) Hashtag(ctx context.Context, tag string, opts *ListOptions) *Cursor[types.Media] {
	return newCursor[types.Media](ctx, s.client, listSpec{
		endpoint:   feedTag,
		path:       internal.Params{"tag": tag},
		itemsKey:   "items",
		hasMoreKey: feedHasMoreKey,
	}, opts)
}

// Location pages through posts at locationID.
func (s *FeedService) Location(ctx context.Context, locationID int64, opts *ListOptions) *Cursor[types.Media] {
	return newCursor[types.Media](ctx, s.client, listSpec{
		endpoint:   feedLocation,
		path:       internal.Params{"location_id": locationID},
		itemsKey:   "items",
		hasMoreKey: feedHasMoreKey,
	}, opts)
}

// Liked pages through the posts the logged-in user has liked.
func (s *FeedService) Liked(ctx context.Context, opts *ListOptions) *Cursor[types.Media] {
	return newCursor[types.Media](ctx, s.client, listSpec{
		endpoint:   feedLiked,
		itemsKey:   "items",
		hasMoreKey: feedHasMoreKey,
	}, opts)
}
