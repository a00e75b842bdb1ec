package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// MinAlbumItems and MaxAlbumItems bound the size of a sidecar album.
	MinAlbumItems = 2
	MaxAlbumItems = 10

	// AlbumPhoto and AlbumVideo are the accepted AlbumItem types.
	AlbumPhoto = "photo"
	AlbumVideo = "video"
)

// MediaType is the numeric media_type of a post.
type MediaType int

const (
	MediaPhoto MediaType = 1
	MediaVideo MediaType = 2
	MediaAlbum MediaType = 8
)

func (m MediaType) String() string {
	switch m {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	case MediaAlbum:
		return "album"
	default:
		return "unknown(" + strconv.Itoa(int(m)) + ")"
	}
}

// ID is a numeric primary key that the service sometimes encodes as a string.
type ID int64

// UnmarshalJSON accepts both 123 and "123".
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = 0
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unquoted
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unrecognized id: %s", data)
	}
	*id = ID(n)
	return nil
}

// User is the user object embedded in most responses.
type User struct {
	PK             ID     `json:"pk"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	IsPrivate      bool   `json:"is_private"`
	IsVerified     bool   `json:"is_verified"`
	ProfilePicURL  string `json:"profile_pic_url"`
	Biography      string `json:"biography,omitempty"`
	ExternalURL    string `json:"external_url,omitempty"`
	FollowerCount  int    `json:"follower_count,omitempty"`
	FollowingCount int    `json:"following_count,omitempty"`
	MediaCount     int    `json:"media_count,omitempty"`
}

// LoginResponse is the body of a successful accounts/login/ call.
type LoginResponse struct {
	Status       string `json:"status"`
	LoggedInUser User   `json:"logged_in_user"`
}

// Caption is the caption comment of a post.
type Caption struct {
	PK   ID     `json:"pk"`
	Text string `json:"text"`
	User *User  `json:"user,omitempty"`
}

// Media is a post: a photo, a video or an album.
type Media struct {
	PK               ID        `json:"pk"`
	ID               string    `json:"id"` // "{pk}_{owner pk}"
	Code             string    `json:"code"`
	MediaType        MediaType `json:"media_type"`
	TakenAt          int64     `json:"taken_at"`
	User             *User     `json:"user,omitempty"`
	Caption          *Caption  `json:"caption,omitempty"`
	LikeCount        int       `json:"like_count"`
	CommentCount     int       `json:"comment_count"`
	CarouselParentID string    `json:"carousel_parent_id,omitempty"`
	CarouselMedia    []Media   `json:"carousel_media,omitempty"`
}

// Comment is a comment on a post.
type Comment struct {
	PK        ID     `json:"pk"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
	User      *User  `json:"user,omitempty"`
}

// FriendshipStatus describes the relationship between the logged-in user and another user.
type FriendshipStatus struct {
	Following       bool `json:"following"`
	FollowedBy      bool `json:"followed_by"`
	Blocking        bool `json:"blocking"`
	IsPrivate       bool `json:"is_private"`
	IncomingRequest bool `json:"incoming_request"`
	OutgoingRequest bool `json:"outgoing_request"`
}

// Broadcast is the result of live/create/.
type Broadcast struct {
	BroadcastID ID     `json:"broadcast_id"`
	UploadURL   string `json:"upload_url"`
}

// VideoUploadURL is one of the upload targets returned by upload/video/.
type VideoUploadURL struct {
	URL     string  `json:"url"`
	Job     string  `json:"job"`
	Expires float64 `json:"expires"`
}

// VideoUploadResponse is the body of upload/video/.
type VideoUploadResponse struct {
	UploadID        string           `json:"upload_id"`
	VideoUploadURLs []VideoUploadURL `json:"video_upload_urls"`
}

// Usertag places a user on a photo. Position coordinates are in [0, 1].
type Usertag struct {
	UserID   int64      `json:"user_id"`
	Position [2]float64 `json:"position"`
}

// VideoMeta describes a video file. The caller measures it; this library does not decode video.
type VideoMeta struct {
	Duration float64
	Width    int
	Height   int
}

// AlbumItem is one entry of an album upload.
type AlbumItem struct {
	// Type is AlbumPhoto or AlbumVideo.
	Type     string
	FileName string
	Data     []byte
	// Thumbnail is required for videos.
	Thumbnail []byte
	Video     VideoMeta
	Usertags  []Usertag
}

// RawJSON is an untyped response body for endpoints without a dedicated type.
type RawJSON = json.RawMessage
