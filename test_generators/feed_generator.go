package test_generators

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// FeedGenerator generates realistic users, posts and comments, and the paged
// response bodies that carry them.
type FeedGenerator struct {
	rand      *rand.Rand
	nextPK    int64
	usernames []string
	names     []string
	captions  []string
	comments  []string
}

// NewFeedGenerator creates a new generator. A zero seed uses the current time.
func NewFeedGenerator(seed int64) *FeedGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &FeedGenerator{
		rand:   rand.New(rand.NewSource(seed)),
		nextPK: 1000,
		usernames: []string{
			"sunset.chaser", "coffee_first", "trail_runner", "urban.sketches",
			"plant_parent", "film.grain", "daily_bread", "night_owl",
			"salt.water", "studio_notes", "map_maker", "quiet.corner",
		},
		names: []string{
			"Ana Lima", "Ben Carter", "Chloé Martin", "Dev Patel", "Eun-ji Park",
			"Farah Haddad", "Gus Olsen", "Hana Sato", "Iris Novak", "Jon Reyes",
		},
		captions: []string{
			"Golden hour never misses",
			"Sunday reset",
			"New work in progress",
			"Back on the trail",
			"Found this little spot today",
			"Throwback to last summer",
			"",
		},
		comments: []string{
			"Love this!", "Where is this?", "Stunning 😍", "So good",
			"Need to go here", "Great shot", "🔥🔥🔥",
		},
	}
}

func (g *FeedGenerator) pk() int64 {
	g.nextPK++
	return g.nextPK
}

func (g *FeedGenerator) randElement(slice []string) string {
	return slice[g.rand.Intn(len(slice))]
}

// GenerateUser creates a user with a unique pk.
func (g *FeedGenerator) GenerateUser() types.User {
	pk := g.pk()
	return types.User{
		PK:            types.ID(pk),
		Username:      fmt.Sprintf("%s%d", g.randElement(g.usernames), pk),
		FullName:      g.randElement(g.names),
		IsPrivate:     g.rand.Float32() < 0.2,
		IsVerified:    g.rand.Float32() < 0.05,
		ProfilePicURL: fmt.Sprintf("https://scontent.example/%d.jpg", pk),
	}
}

// GenerateUsers creates count users.
func (g *FeedGenerator) GenerateUsers(count int) []types.User {
	users := make([]types.User, count)
	for i := range users {
		users[i] = g.GenerateUser()
	}
	return users
}

// GenerateMedia creates a photo or video owned by owner.
func (g *FeedGenerator) GenerateMedia(owner types.User) types.Media {
	pk := g.pk()
	m := types.Media{
		PK:           types.ID(pk),
		ID:           fmt.Sprintf("%d_%d", pk, int64(owner.PK)),
		Code:         g.code(),
		MediaType:    types.MediaPhoto,
		TakenAt:      time.Now().Add(-time.Duration(g.rand.Intn(86400*30)) * time.Second).Unix(),
		User:         &owner,
		LikeCount:    g.rand.Intn(5000),
		CommentCount: g.rand.Intn(200),
	}
	if g.rand.Float32() < 0.25 {
		m.MediaType = types.MediaVideo
	}
	if text := g.randElement(g.captions); text != "" {
		m.Caption = &types.Caption{PK: types.ID(g.pk()), Text: text}
	}
	return m
}

// GenerateAlbum creates an album post with n children.
func (g *FeedGenerator) GenerateAlbum(owner types.User, n int) types.Media {
	album := g.GenerateMedia(owner)
	album.MediaType = types.MediaAlbum
	for range n {
		child := g.GenerateMedia(owner)
		child.CarouselParentID = album.ID
		child.Caption = nil
		album.CarouselMedia = append(album.CarouselMedia, child)
	}
	return album
}

// GenerateComment creates a comment by a random user.
func (g *FeedGenerator) GenerateComment() types.Comment {
	author := g.GenerateUser()
	return types.Comment{
		PK:        types.ID(g.pk()),
		Text:      g.randElement(g.comments),
		CreatedAt: time.Now().Add(-time.Duration(g.rand.Intn(3600)) * time.Second).Unix(),
		User:      &author,
	}
}

func (g *FeedGenerator) code() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	b := make([]byte, 11)
	for i := range b {
		b[i] = alphabet[g.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// PageOptions names the fields of a paged response.
type PageOptions struct {
	// ItemsKey holds the items, e.g. "users" or "items".
	ItemsKey string
	// HasMoreKey is the continuation flag. Defaults to "big_list".
	HasMoreKey string
	// PageSize is the number of items per page.
	PageSize int
}

// Pages splits items into response bodies chained by next_max_id tokens
// "page-2", "page-3" and so on. The last page has the flag false and no token.
func Pages[T any](items []T, opts PageOptions) ([]string, error) {
	if opts.HasMoreKey == "" {
		opts.HasMoreKey = "big_list"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = len(items)
	}

	var pages []string
	for start := 0; start < len(items) || start == 0; start += opts.PageSize {
		end := min(start+opts.PageSize, len(items))
		body := map[string]any{
			"status":      "ok",
			opts.ItemsKey: items[start:end],
		}
		more := end < len(items)
		body[opts.HasMoreKey] = more
		if more {
			body["next_max_id"] = "page-" + strconv.Itoa(len(pages)+2)
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		pages = append(pages, string(raw))
		if end >= len(items) {
			break
		}
	}
	return pages, nil
}
