package validation

import (
	"fmt"
	"regexp"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// Regular expressions for validating Instagram data formats
var (
	// usernameRegex matches valid usernames (1-30 chars, letters, digits, underscore, period)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{1,30}$`)

	// hashtagRegex matches a hashtag without the leading '#'
	hashtagRegex = regexp.MustCompile(`^[\p{L}\p{N}_]{1,100}$`)

	// mediaIDRegex matches "{pk}" or "{pk}_{owner pk}"
	mediaIDRegex = regexp.MustCompile(`^[0-9]+(_[0-9]+)?$`)
)

// IsValidUsername checks if a string is a valid username
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidHashtag checks if a string is a valid hashtag (without '#')
func IsValidHashtag(s string) bool {
	return hashtagRegex.MatchString(s)
}

// IsValidMediaID checks if a string is a valid media id
func IsValidMediaID(s string) bool {
	return mediaIDRegex.MatchString(s)
}

// ValidateUsertags checks that every usertag has a non-negative user id and a
// position inside the unit square.
func ValidateUsertags(field string, tags []types.Usertag) error {
	for i, tag := range tags {
		name := fmt.Sprintf("%s[%d]", field, i)
		if tag.UserID < 0 {
			return &pkgerrs.ValidationError{Field: name + ".user_id", Message: "invalid user entry in usertags: negative user id"}
		}
		for axis, p := range tag.Position {
			if p < 0.0 || p > 1.0 {
				return &pkgerrs.ValidationError{
					Field:   fmt.Sprintf("%s.position[%d]", name, axis),
					Message: fmt.Sprintf("invalid user entry in usertags: coordinate %v outside [0, 1]", p),
				}
			}
		}
	}
	return nil
}

// ValidateAlbum runs every local check of an album upload before any file is sent:
// 2-10 items, each with data and a supported type, valid usertags, and a thumbnail
// for every video.
func ValidateAlbum(items []types.AlbumItem) error {
	if len(items) < types.MinAlbumItems || len(items) > types.MaxAlbumItems {
		return &pkgerrs.ValidationError{
			Field: "media",
			Message: fmt.Sprintf("albums must contain %d-%d items, got %d",
				types.MinAlbumItems, types.MaxAlbumItems, len(items)),
		}
	}

	for i, item := range items {
		field := fmt.Sprintf("media[%d]", i)
		if len(item.Data) == 0 || item.Type == "" {
			return &pkgerrs.ValidationError{Field: field, Message: "item must have data and a type"}
		}

		switch item.Type {
		case types.AlbumPhoto:
		case types.AlbumVideo:
			if len(item.Thumbnail) == 0 {
				return &pkgerrs.ValidationError{Field: field + ".thumbnail", Message: "videos require a thumbnail"}
			}
		default:
			return &pkgerrs.ValidationError{Field: field + ".type", Message: fmt.Sprintf("unsupported album media type %q", item.Type)}
		}

		if err := ValidateUsertags(field+".usertags", item.Usertags); err != nil {
			return err
		}
	}
	return nil
}
