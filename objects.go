package igapi

import (
	"context"
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// User is a user bound to the client that fetched it. The embedded record may
// be partial (list endpoints return only a few fields); call EnsureLoaded
// before reading profile counters.
type User struct {
	types.User

	client *Client
	loaded bool
}

func (u *User) String() string {
	return fmt.Sprintf("User [%d] '%s'", u.PK, u.Username)
}

// NewUser binds a user record returned by a list endpoint to c.
func NewUser(c *Client, u types.User) *User {
	return &User{User: u, client: c}
}

// UserByID fetches a full user record.
func UserByID(ctx context.Context, c *Client, userID int64) (*User, error) {
	u, err := c.Users.Info(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &User{User: *u, client: c, loaded: true}, nil
}

// UserByName fetches a full user record by username.
func UserByName(ctx context.Context, c *Client, username string) (*User, error) {
	u, err := c.Users.InfoByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &User{User: *u, client: c, loaded: true}, nil
}

// LoggedInUser returns the user the client is logged in as, from the login response.
// It does not send a request.
func LoggedInUser(c *Client) (*User, error) {
	raw := c.session.LoggedInUser()
	if len(raw) == 0 {
		return nil, &pkgerrs.AuthenticationRequiredError{Operation: "logged in user"}
	}
	var u types.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "logged in user", Err: err}
	}
	return &User{User: u, client: c}, nil
}

// EnsureLoaded fetches the full record once. Later calls return without I/O.
func (u *User) EnsureLoaded(ctx context.Context) error {
	if u.loaded {
		return nil
	}
	return u.Refresh(ctx)
}

// Refresh re-fetches the full record.
func (u *User) Refresh(ctx context.Context) error {
	fresh, err := u.client.Users.Info(ctx, int64(u.PK))
	if err != nil {
		return err
	}
	u.User = *fresh
	u.loaded = true
	return nil
}

// Followers pages through this user's followers.
func (u *User) Followers(ctx context.Context, opts *ListOptions) *Cursor[types.User] {
	return u.client.Friends.Followers(ctx, int64(u.PK), opts)
}

// Followings pages through the accounts this user follows.
func (u *User) Followings(ctx context.Context, opts *ListOptions) *Cursor[types.User] {
	return u.client.Friends.Followings(ctx, int64(u.PK), opts)
}

// Posts pages through this user's feed.
func (u *User) Posts(ctx context.Context, opts *ListOptions) *Cursor[types.Media] {
	return u.client.Feed.User(ctx, int64(u.PK), 0, opts)
}

// Post is a post bound to the client that fetched it.
type Post struct {
	types.Media

	client *Client
	loaded bool
}

func (p *Post) String() string {
	s := fmt.Sprintf("Post [%s]", p.ID)
	if p.User != nil {
		s += fmt.Sprintf(" by '%s'", p.User.Username)
	}
	return s
}

// NewPost binds a media record returned by a feed to c.
func NewPost(c *Client, m types.Media) *Post {
	return &Post{Media: m, client: c}
}

// PostByID fetches a post by "{pk}" or "{pk}_{owner pk}".
func PostByID(ctx context.Context, c *Client, mediaID string) (*Post, error) {
	m, err := c.Media.Info(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	return &Post{Media: *m, client: c, loaded: true}, nil
}

// EnsureLoaded fetches the full record once.
func (p *Post) EnsureLoaded(ctx context.Context) error {
	if p.loaded {
		return nil
	}
	return p.Refresh(ctx)
}

// Refresh re-fetches the full record.
func (p *Post) Refresh(ctx context.Context) error {
	id := p.ID
	if id == "" {
		id = fmt.Sprint(int64(p.PK))
	}
	fresh, err := p.client.Media.Info(ctx, id)
	if err != nil {
		return err
	}
	p.Media = *fresh
	p.loaded = true
	return nil
}

// Type returns "photo", "video" or "album".
func (p *Post) Type() string {
	return p.MediaType.String()
}

// Caption returns the caption text, or "" if the post has none.
func (p *Post) Caption() string {
	if p.Media.Caption == nil {
		return ""
	}
	return p.Media.Caption.Text
}

// Album returns the album this post belongs to, or the post itself if it is
// not part of one.
func (p *Post) Album(ctx context.Context) (*Post, error) {
	if p.CarouselParentID == "" {
		return p, nil
	}
	return PostByID(ctx, p.client, p.CarouselParentID)
}

// Comments pages through this post's comments.
func (p *Post) Comments(ctx context.Context, opts *ListOptions) *Cursor[types.Comment] {
	return p.client.Media.Comments(ctx, p.ID, opts)
}
