package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// FriendsService handles friendships: followers, followings, follow requests and blocks.
type FriendsService service

// Autocomplete returns the user list the app uses for @-mention suggestions.
func (s *FriendsService) Autocomplete(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, friendsAutocomplete, nil, nil)
}

// Relationship returns the friendship status between the logged-in user and userID.
func (s *FriendsService) Relationship(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	if err := s.client.validator.ValidateID("user_id", userID); err != nil {
		return nil, err
	}
	resp, err := friendsShow.Call(ctx, s.client.dispatcher, internal.Params{"user_id": userID}, internal.Params{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var status types.FriendshipStatus
	if err := resp.Decode(&status); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "friendships/show/", Err: err}
	}
	return &status, nil
}

// Followers pages through the followers of userID.
func (s *FriendsService) Followers(ctx context.Context, userID int64, opts *ListOptions) *Cursor[types.User] {
	return newCursor[types.User](ctx, s.client, listSpec{
		endpoint: friendsFollowers,
		path:     internal.Params{"user_id": userID},
		itemsKey: "users",
	}, opts)
}

// Followings pages through the accounts userID follows.
func (s *FriendsService) Followings(ctx context.Context, userID int64, opts *ListOptions) *Cursor[types.User] {
	return newCursor[types.User](ctx, s.client, listSpec{
		endpoint: friendsFollowing,
		path:     internal.Params{"user_id": userID},
		query:    internal.Params{"ig_sig_key_version": internal.SigKeyVersion},
		itemsKey: "users",
	}, opts)
}

// PendingRequests pages through incoming follow requests.
func (s *FriendsService) PendingRequests(ctx context.Context, opts *ListOptions) *Cursor[types.User] {
	return newCursor[types.User](ctx, s.client, listSpec{
		endpoint: friendsPending,
		itemsKey: "users",
	}, opts)
}

// Follow follows userID, or requests to if the account is private.
func (s *FriendsService) Follow(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	return s.mutate(ctx, friendsCreate, userID)
}

// Unfollow stops following userID.
func (s *FriendsService) Unfollow(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	return s.mutate(ctx, friendsDestroy, userID)
}

// Approve accepts a pending follow request from userID.
func (s *FriendsService) Approve(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	return s.mutate(ctx, friendsApprove, userID)
}

// Ignore declines a pending follow request from userID.
func (s *FriendsService) Ignore(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	return s.mutate(ctx, friendsIgnore, userID)
}

// Block blocks userID.
func (s *FriendsService) Block(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	return s.mutate(ctx, friendsBlock, userID)
}

// Unblock lifts a block on userID.
func (s *FriendsService) Unblock(ctx context.Context, userID int64) (*types.FriendshipStatus, error) {
	return s.mutate(ctx, friendsUnblock, userID)
}

// mutate sends a friendship change and returns the resulting status.
func (s *FriendsService) mutate(ctx context.Context, e internal.Endpoint, userID int64) (*types.FriendshipStatus, error) {
	if err := s.client.validator.ValidateID("user_id", userID); err != nil {
		return nil, err
	}
	var status types.FriendshipStatus
	if err := s.client.callInto(ctx, e, internal.Params{"user_id": userID}, internal.Params{"user_id": userID}, "friendship_status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
