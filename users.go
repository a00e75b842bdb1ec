package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/validation"
)

// UsersService looks up and searches users.
type UsersService service

// Info returns the profile of userID.
func (s *UsersService) Info(ctx context.Context, userID int64) (*types.User, error) {
	if err := s.client.validator.ValidateID("user_id", userID); err != nil {
		return nil, err
	}
	var user types.User
	if err := s.client.callInto(ctx, usersInfo, internal.Params{"user_id": userID}, nil, "user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InfoByUsername returns the profile of the named user.
func (s *UsersService) InfoByUsername(ctx context.Context, username string) (*types.User, error) {
	if !validation.IsValidUsername(username) {
		return nil, &pkgerrs.ValidationError{Field: "username", Message: "invalid username " + username}
	}
	var user types.User
	if err := s.client.callInto(ctx, usersUsernameInfo, internal.Params{"username": username}, nil, "user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search returns users matching query.
func (s *UsersService) Search(ctx context.Context, query string) ([]types.User, error) {
	var users []types.User
	if err := s.client.callInto(ctx, usersSearch, nil, internal.Params{
		"sig_key_version": internal.SigKeyVersion,
		"is_typeahead":    "true",
		"query":           query,
	}, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// HashtagsService searches hashtags and their feeds.
type HashtagsService service

// Feed pages through posts tagged with tag. It is the same list as Feed.Hashtag.
func (s *HashtagsService) Feed(ctx context.Context, tag string, opts *ListOptions) *Cursor[types.Media] {
	return s.client.Feed.Hashtag(ctx, tag, opts)
}

// Search returns hashtags matching query.
func (s *HashtagsService) Search(ctx context.Context, query string) (json.RawMessage, error) {
	return s.client.call(ctx, tagsSearch, nil, internal.Params{"is_typeahead": "true", "q": query})
}

// LocationsService searches places and their feeds.
type LocationsService service

// Feed pages through posts at locationID. It is the same list as Feed.Location.
func (s *LocationsService) Feed(ctx context.Context, locationID int64, opts *ListOptions) *Cursor[types.Media] {
	return s.client.Feed.Location(ctx, locationID, opts)
}

// OfUser returns the locations userID has posted from.
func (s *LocationsService) OfUser(ctx context.Context, userID int64) (json.RawMessage, error) {
	if err := s.client.validator.ValidateID("user_id", userID); err != nil {
		return nil, err
	}
	return s.client.call(ctx, locationsOfUser, internal.Params{"user_id": userID}, nil)
}

// Search returns places matching query.
func (s *LocationsService) Search(ctx context.Context, query string) (json.RawMessage, error) {
	return s.client.call(ctx, locationsSearch, nil, internal.Params{"query": query})
}
