package test_utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/validation"
)

var signedBodyRegex = regexp.MustCompile(`^ig_sig_key_version=4&signed_body=[0-9a-f]{64}\..+$`)

// AssertSignedBody checks the signed form envelope of a POST body.
func AssertSignedBody(body []byte) error {
	if !signedBodyRegex.Match(body) {
		return fmt.Errorf("body is not a signed envelope: %.120q", body)
	}
	return nil
}

func AssertValidUsername(username string) error {
	if !validation.IsValidUsername(username) {
		return fmt.Errorf("invalid username: %q", username)
	}
	return nil
}

func AssertValidMediaID(id string) error {
	if !validation.IsValidMediaID(id) {
		return fmt.Errorf("invalid media id: %q", id)
	}
	return nil
}

// AssertValidUser checks the fields every user record carries.
func AssertValidUser(u types.User) error {
	if u.PK <= 0 {
		return fmt.Errorf("user %q has no pk", u.Username)
	}
	return AssertValidUsername(u.Username)
}

// AssertValidMedia checks the fields every media record carries. The id must
// start with the pk.
func AssertValidMedia(m types.Media) error {
	if m.PK <= 0 {
		return fmt.Errorf("media %q has no pk", m.ID)
	}
	if err := AssertValidMediaID(m.ID); err != nil {
		return err
	}
	if !strings.HasPrefix(m.ID, fmt.Sprint(int64(m.PK))) {
		return fmt.Errorf("media id %q does not start with pk %d", m.ID, m.PK)
	}
	switch m.MediaType {
	case types.MediaPhoto, types.MediaVideo:
	case types.MediaAlbum:
		for i, child := range m.CarouselMedia {
			if child.CarouselParentID != m.ID {
				return fmt.Errorf("album child %d has parent %q, want %q", i, child.CarouselParentID, m.ID)
			}
		}
	default:
		return fmt.Errorf("media %q has unknown type %v", m.ID, m.MediaType)
	}
	return nil
}

// AssertUniqueUsers checks that no pk appears twice, which would mean a page was fetched twice.
func AssertUniqueUsers(users []types.User) error {
	seen := make(map[types.ID]int, len(users))
	for i, u := range users {
		if j, ok := seen[u.PK]; ok {
			return fmt.Errorf("user %d appears at %d and %d", u.PK, j, i)
		}
		seen[u.PK] = i
	}
	return nil
}

func AssertUserListValid(users []types.User) error {
	for i, u := range users {
		if err := AssertValidUser(u); err != nil {
			return fmt.Errorf("user %d: %w", i, err)
		}
	}
	return AssertUniqueUsers(users)
}

func AssertMediaListValid(media []types.Media) error {
	for i, m := range media {
		if err := AssertValidMedia(m); err != nil {
			return fmt.Errorf("media %d: %w", i, err)
		}
	}
	return nil
}

// AssertContentRange checks a Content-Range header of "bytes start-end/total".
func AssertContentRange(header string, start, end, total int) error {
	want := fmt.Sprintf("bytes %d-%d/%d", start, end, total)
	if header != want {
		return fmt.Errorf("Content-Range %q, want %q", header, want)
	}
	return nil
}
