package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// ProfileService edits the logged-in user's account.
type ProfileService service

// ProfileEdit is the full set of editable profile fields. Every field is sent;
// load the current values with CurrentUser first to change only some of them.
type ProfileEdit struct {
	ExternalURL string
	PhoneNumber string
	FullName    string
	Biography   string
	Email       string
	Gender      int
}

// ChangePassword sets a new password. The client keeps using the old one for
// its device id, so the next login must use a new Client.
func (s *ProfileService) ChangePassword(ctx context.Context, newPassword string) (json.RawMessage, error) {
	if newPassword == "" {
		return nil, &pkgerrs.ValidationError{Field: "new_password", Message: "password cannot be empty"}
	}
	return s.client.call(ctx, profileChangePassword, nil, internal.Params{
		"old_password":  s.client.session.Password(),
		"new_password1": newPassword,
		"new_password2": newPassword,
	})
}

// RemovePicture resets the profile picture to the default.
func (s *ProfileService) RemovePicture(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, profileRemovePicture, nil, nil)
}

// SetPrivate makes the account private.
func (s *ProfileService) SetPrivate(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, profileSetPrivate, nil, nil)
}

// SetPublic makes the account public.
func (s *ProfileService) SetPublic(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, profileSetPublic, nil, nil)
}

// CurrentUser returns the editable profile of the logged-in user.
func (s *ProfileService) CurrentUser(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := s.client.callInto(ctx, profileCurrentUser, nil, nil, "user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Edit overwrites the profile.
func (s *ProfileService) Edit(ctx context.Context, edit ProfileEdit) (*types.User, error) {
	var user types.User
	if err := s.client.callInto(ctx, profileEdit, nil, internal.Params{
		"external_url": edit.ExternalURL,
		"phone_number": edit.PhoneNumber,
		"username":     s.client.session.Username(),
		"full_name":    edit.FullName,
		"biography":    edit.Biography,
		"email":        edit.Email,
		"gender":       edit.Gender,
	}, "user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetNameAndPhone updates the display name and phone number.
func (s *ProfileService) SetNameAndPhone(ctx context.Context, name, phone string) (json.RawMessage, error) {
	return s.client.call(ctx, profileSetNamePhone, nil, internal.Params{
		"first_name":   name,
		"phone_number": phone,
	})
}
