package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// MediaService handles single posts: info, likes, saves, comments and edits.
// Media ids are either "{pk}" or "{pk}_{owner pk}".
type MediaService service

// Info returns the post with the given id.
func (s *MediaService) Info(ctx context.Context, mediaID string) (*types.Media, error) {
	if err := s.client.validator.ValidateMediaID(mediaID); err != nil {
		return nil, err
	}
	var items []types.Media
	if err := s.client.callInto(ctx, mediaInfo, mediaPath(mediaID), nil, "items", &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &pkgerrs.ParseError{Operation: "media info", Message: "response has no items"}
	}
	return &items[0], nil
}

// Edit replaces the caption of a post.
func (s *MediaService) Edit(ctx context.Context, mediaID, caption string) (json.RawMessage, error) {
	return s.send(ctx, mediaEdit, mediaID, internal.Params{"caption_text": caption})
}

// RemoveSelfTag removes the logged-in user's tag from a post.
func (s *MediaService) RemoveSelfTag(ctx context.Context, mediaID string) (json.RawMessage, error) {
	return s.send(ctx, mediaRemoveTag, mediaID, nil)
}

// Delete removes a post owned by the logged-in user.
func (s *MediaService) Delete(ctx context.Context, mediaID string, mediaType types.MediaType) (json.RawMessage, error) {
	if mediaType == 0 {
		mediaType = types.MediaPhoto
	}
	return s.send(ctx, mediaDelete, mediaID, internal.Params{"media_type": int(mediaType), "media_id": mediaID})
}

// Likers returns the users who liked a post.
func (s *MediaService) Likers(ctx context.Context, mediaID string) ([]types.User, error) {
	if err := s.client.validator.ValidateMediaID(mediaID); err != nil {
		return nil, err
	}
	var users []types.User
	if err := s.client.callInto(ctx, mediaLikers, mediaPath(mediaID), nil, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Like likes mediaID.
func (s *MediaService) Like(ctx context.Context, mediaID string) (json.RawMessage, error) {
	return s.send(ctx, mediaLike, mediaID, internal.Params{"media_id": mediaID})
}

// Unlike removes a like from mediaID.
func (s *MediaService) Unlike(ctx context.Context, mediaID string) (json.RawMessage, error) {
	return s.send(ctx, mediaUnlike, mediaID, internal.Params{"media_id": mediaID})
}

// Save adds mediaID to the saved collection.
func (s *MediaService) Save(ctx context.Context, mediaID string) (json.RawMessage, error) {
	return s.send(ctx, mediaSave, mediaID, internal.Params{"media_id": mediaID})
}

// Unsave removes mediaID from the saved collection.
func (s *MediaService) Unsave(ctx context.Context, mediaID string) (json.RawMessage, error) {
	return s.send(ctx, mediaUnsave, mediaID, internal.Params{"media_id": mediaID})
}

// Comment posts a comment and returns it.
func (s *MediaService) Comment(ctx context.Context, mediaID, text string) (*types.Comment, error) {
	if err := s.client.validator.ValidateMediaID(mediaID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, &pkgerrs.ValidationError{Field: "comment_text", Message: "comment cannot be empty"}
	}
	var comment types.Comment
	if err := s.client.callInto(ctx, mediaComment, mediaPath(mediaID), internal.Params{"comment_text": text}, "comment", &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment from a post.
func (s *MediaService) DeleteComment(ctx context.Context, mediaID string, commentID int64) (json.RawMessage, error) {
	if err := s.client.validator.ValidateMediaID(mediaID); err != nil {
		return nil, err
	}
	return s.client.call(ctx, mediaDeleteComment, internal.Params{"media_id": mediaID, "comment_id": commentID}, nil)
}

// Comments pages through the comments of a post.
func (s *MediaService) Comments(ctx context.Context, mediaID string, opts *ListOptions) *Cursor[types.Comment] {
	return newCursor[types.Comment](ctx, s.client, listSpec{
		endpoint:   mediaComments,
		path:       mediaPath(mediaID),
		itemsKey:   "comments",
		hasMoreKey: "has_more_comments",
	}, opts)
}

func (s *MediaService) send(ctx context.Context, e internal.Endpoint, mediaID string, fields internal.Params) (json.RawMessage, error) {
	if err := s.client.validator.ValidateMediaID(mediaID); err != nil {
		return nil, err
	}
	return s.client.call(ctx, e, mediaPath(mediaID), fields)
}

func mediaPath(mediaID string) internal.Params {
	return internal.Params{"media_id": mediaID}
}
