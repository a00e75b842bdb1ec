package igapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
	"github.com/jamesprial/go-instagram-api-wrapper/test_generators"
	"github.com/jamesprial/go-instagram-api-wrapper/test_utils"
)

func TestFeed_UserCursor(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)

	gen := test_generators.NewFeedGenerator(3)
	owner := gen.GenerateUser()
	media := []types.Media{gen.GenerateMedia(owner), gen.GenerateAlbum(owner, 3), gen.GenerateMedia(owner)}
	pages, err := test_generators.Pages(media, test_generators.PageOptions{ItemsKey: "items", HasMoreKey: "more_available", PageSize: 2})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	servePages(t, ms, http.MethodGet, "feed/user/{user_id}/", pages)

	got, err := c.Feed.User(context.Background(), int64(owner.PK), 1690000000, nil).Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(got))
	}
	if err := test_utils.AssertMediaListValid(got); err != nil {
		t.Fatal(err)
	}
	if got[1].MediaType != types.MediaAlbum || len(got[1].CarouselMedia) != 3 {
		t.Errorf("expected album with 3 children, got %+v", got[1])
	}

	reqs := ms.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 page requests, got %d", len(reqs))
	}
	for _, req := range reqs {
		if req.Query.Get("min_timestamp") != "1690000000" {
			t.Errorf("expected min_timestamp on every page, got %v", req.Query)
		}
	}
}

func TestFeed_BigListFlagIgnored(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ms.SetJSON(http.MethodGet, "feed/tag/{tag}/", `{"status":"ok","items":[{"pk":1,"id":"1_2"}],"big_list":true,"next_max_id":"x"}`)

	if _, err := c.Hashtags.Feed(context.Background(), "golang", nil).Collect(); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := ms.CallCount(http.MethodGet, "feed/tag/golang/"); got != 1 {
		t.Errorf("feeds continue on more_available only, got %d requests", got)
	}
}

func TestFeed_SimpleCalls(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ctx := context.Background()

	ms.SetJSON(http.MethodGet, "feed/popular/", `{"status":"ok","items":[]}`)
	ms.SetJSON(http.MethodGet, "feed/timeline/", `{"status":"ok","items":[]}`)
	ms.SetJSON(http.MethodGet, "feed/user/{user_id}/reel_media/", `{"status":"ok","items":[]}`)

	if _, err := c.Misc.Popular(ctx); err != nil {
		t.Fatalf("Popular returned error: %v", err)
	}
	req := ms.RequestsTo(http.MethodGet, "feed/popular/")[0]
	if req.Query.Get("people_teaser_supported") != "1" || req.Query.Get("ranked_content") != "true" {
		t.Errorf("unexpected popular query %v", req.Query)
	}

	if _, err := c.Feed.Timeline(ctx); err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}
	body, err := c.Feed.Stories(ctx, 8)
	if err != nil {
		t.Fatalf("Stories returned error: %v", err)
	}
	if string(body) != `{"status":"ok","items":[]}` {
		t.Errorf("expected raw body, got %s", body)
	}
	if got := ms.CallCount(http.MethodGet, "feed/user/8/reel_media/"); got != 1 {
		t.Errorf("expected stories request for user 8, got %d", got)
	}
}

func TestMedia_Info(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ms.SetJSON(http.MethodPost, "media/{media_id}/info/", `{"status":"ok","items":[{"pk":"17","id":"17_555","media_type":1,"caption":{"text":"hi"}}]}`)

	m, err := c.Media.Info(context.Background(), "17_555")
	if err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if m.PK != 17 || m.Caption == nil || m.Caption.Text != "hi" {
		t.Errorf("unexpected media %+v", m)
	}
	if got := ms.Requests()[0].Vars["media_id"]; got != "17_555" {
		t.Errorf("unexpected media_id %q", got)
	}
}

func TestMedia_InfoEmptyItems(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ms.SetJSON(http.MethodPost, "media/{media_id}/info/", `{"status":"ok","items":[]}`)

	_, err := c.Media.Info(context.Background(), "17")
	var parseErr *pkgerrs.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestMedia_ValidationSendsNothing(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ctx := context.Background()

	calls := map[string]func() error{
		"bad id":        func() error { _, err := c.Media.Like(ctx, "../17"); return err },
		"empty comment": func() error { _, err := c.Media.Comment(ctx, "17", ""); return err },
		"bad username":  func() error { _, err := c.Users.InfoByUsername(ctx, "no spaces allowed"); return err },
		"zero broadcast": func() error {
			_, err := c.Live.Start(ctx, 0, false)
			return err
		},
		"empty password": func() error { _, err := c.Profile.ChangePassword(ctx, ""); return err },
		"no recipients":  func() error { _, err := c.Direct.SendText(ctx, "hi", nil); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var valErr *pkgerrs.ValidationError
			if err := call(); !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %T (%v)", err, err)
			}
		})
	}
	if n := len(ms.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestMedia_CommentAndDelete(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ctx := context.Background()
	ms.SetJSON(http.MethodPost, "media/{media_id}/comment/", `{"status":"ok","comment":{"pk":99,"text":"nice"}}`)
	ms.SetJSON(http.MethodPost, "media/{media_id}/comment/{comment_id}/delete/", `{"status":"ok"}`)
	ms.SetJSON(http.MethodPost, "media/{media_id}/delete/", `{"status":"ok","did_delete":true}`)

	comment, err := c.Media.Comment(ctx, "17_555", "nice")
	if err != nil {
		t.Fatalf("Comment returned error: %v", err)
	}
	if comment.PK != 99 {
		t.Errorf("unexpected comment %+v", comment)
	}
	payload := signedPayload(t, ms.RequestsTo(http.MethodPost, "media/17_555/comment/")[0].Body)
	if payload["comment_text"] != "nice" {
		t.Errorf("unexpected comment payload %v", payload)
	}

	if _, err := c.Media.DeleteComment(ctx, "17_555", 99); err != nil {
		t.Fatalf("DeleteComment returned error: %v", err)
	}
	if got := ms.CallCount(http.MethodPost, "media/17_555/comment/99/delete/"); got != 1 {
		t.Errorf("expected delete comment request, got %d", got)
	}

	if _, err := c.Media.Delete(ctx, "17_555", 0); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	payload = signedPayload(t, ms.RequestsTo(http.MethodPost, "media/17_555/delete/")[0].Body)
	if payload["media_type"] != float64(1) || payload["media_id"] != "17_555" {
		t.Errorf("expected photo media_type by default, got %v", payload)
	}
}

func TestMedia_CommentsCursor(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)

	gen := test_generators.NewFeedGenerator(11)
	comments := []types.Comment{gen.GenerateComment(), gen.GenerateComment(), gen.GenerateComment()}
	pages, _ := test_generators.Pages(comments, test_generators.PageOptions{ItemsKey: "comments", HasMoreKey: "has_more_comments", PageSize: 2})
	servePages(t, ms, http.MethodGet, "media/{media_id}/comments/", pages)

	got, err := c.Media.Comments(context.Background(), "17_555", nil).Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(got) != 3 || got[2].PK != comments[2].PK {
		t.Errorf("unexpected comments %+v", got)
	}
}

func TestUsers_InfoAndSearch(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ctx := context.Background()
	ms.SetJSON(http.MethodGet, "users/{user_id}/info/", `{"status":"ok","user":{"pk":9,"username":"bob","follower_count":12}}`)
	ms.SetJSON(http.MethodGet, "users/{username}/usernameinfo/", `{"status":"ok","user":{"pk":9,"username":"bob"}}`)
	ms.SetJSON(http.MethodGet, "users/search/", `{"status":"ok","users":[{"pk":9,"username":"bob"},{"pk":10,"username":"bobby"}]}`)

	u, err := c.Users.Info(ctx, 9)
	if err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if u.Username != "bob" || u.FollowerCount != 12 {
		t.Errorf("unexpected user %+v", u)
	}

	if _, err := c.Users.InfoByUsername(ctx, "bob"); err != nil {
		t.Fatalf("InfoByUsername returned error: %v", err)
	}
	if got := ms.CallCount(http.MethodGet, "users/bob/usernameinfo/"); got != 1 {
		t.Errorf("expected usernameinfo request, got %d", got)
	}

	users, err := c.Users.Search(ctx, "bob")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
	q := ms.RequestsTo(http.MethodGet, "users/search/")[0].Query
	if q.Get("query") != "bob" || q.Get("is_typeahead") != "true" || q.Get("rank_token") != c.RankToken() {
		t.Errorf("unexpected search query %v", q)
	}
}

func TestLive_Lifecycle(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ctx := context.Background()
	ms.SetJSON(http.MethodPost, "live/create/", `{"status":"ok","broadcast_id":"1789","upload_url":"rtmps://live-upload.example:443/rtmp/1789"}`)
	ms.SetJSON(http.MethodPost, "live/{broadcast_id}/start/", `{"status":"ok"}`)
	ms.SetJSON(http.MethodPost, "live/{broadcast_id}/end_broadcast/", `{"status":"ok"}`)
	ms.SetJSON(http.MethodPost, "live/{broadcast_id}/add_to_post_live/", `{"status":"ok"}`)

	b, err := c.Live.Create(ctx, BroadcastOptions{Message: "hello"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if b.BroadcastID != 1789 || b.UploadURL == "" {
		t.Errorf("unexpected broadcast %+v", b)
	}
	payload := signedPayload(t, ms.RequestsTo(http.MethodPost, "live/create/")[0].Body)
	if payload["preview_width"] != float64(1080) || payload["preview_height"] != float64(1920) || payload["broadcast_type"] != "RTMP" {
		t.Errorf("unexpected create payload %v", payload)
	}

	id := int64(b.BroadcastID)
	if _, err := c.Live.Start(ctx, id, true); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	payload = signedPayload(t, ms.RequestsTo(http.MethodPost, "live/1789/start/")[0].Body)
	if payload["should_send_notifications"] != float64(1) {
		t.Errorf("expected notifications on, got %v", payload)
	}
	if _, err := c.Live.End(ctx, id); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if _, err := c.Live.AddToPostLive(ctx, id); err != nil {
		t.Fatalf("AddToPostLive returned error: %v", err)
	}
}

func TestProfile_Edit(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ms.SetJSON(http.MethodPost, "accounts/edit_profile/", `{"status":"ok","user":{"pk":555,"username":"alice","biography":"new bio"}}`)
	ms.SetJSON(http.MethodPost, "accounts/current_user/", `{"status":"ok","user":{"pk":555,"username":"alice"}}`)

	u, err := c.Profile.Edit(context.Background(), ProfileEdit{Biography: "new bio", FullName: "Alice"})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if u.Biography != "new bio" {
		t.Errorf("unexpected user %+v", u)
	}
	payload := signedPayload(t, ms.RequestsTo(http.MethodPost, "accounts/edit_profile/")[0].Body)
	if payload["username"] != "alice" || payload["biography"] != "new bio" || payload["gender"] != float64(0) {
		t.Errorf("unexpected edit payload %v", payload)
	}

	if _, err := c.Profile.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if q := ms.RequestsTo(http.MethodPost, "accounts/current_user/")[0].Query; q.Get("edit") != "true" {
		t.Errorf("expected edit=true, got %v", q)
	}
}

func TestProfile_ChangePassword(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ms.SetJSON(http.MethodPost, "accounts/change_password/", `{"status":"ok"}`)

	if _, err := c.Profile.ChangePassword(context.Background(), "n3w"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	payload := signedPayload(t, ms.Requests()[0].Body)
	if payload["old_password"] != "secret" || payload["new_password1"] != "n3w" || payload["new_password2"] != "n3w" {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestMisc_ExposeSendsUserID(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ms.SetJSON(http.MethodPost, "qe/expose/", `{"status":"ok"}`)

	if _, err := c.Misc.Expose(context.Background()); err != nil {
		t.Fatalf("Expose returned error: %v", err)
	}
	payload := signedPayload(t, ms.Requests()[0].Body)
	if payload["id"] != float64(555) || payload["experiment"] != exposeExperiment {
		t.Errorf("unexpected expose payload %v", payload)
	}
	if payload["_uid"] != float64(555) || payload["_csrftoken"] != "abc123" {
		t.Errorf("expected session envelope fields, got %v", payload)
	}
}

func TestServices_SimpleToggles(t *testing.T) {
	ms := newMockServer(t)
	c := loggedInClient(t, ms)
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		route  string
		path   string
		call   func() (json.RawMessage, error)
	}{
		{"like", http.MethodPost, "media/{media_id}/like/", "media/17_555/like/", func() (json.RawMessage, error) { return c.Media.Like(ctx, "17_555") }},
		{"unlike", http.MethodPost, "media/{media_id}/unlike/", "media/17_555/unlike/", func() (json.RawMessage, error) { return c.Media.Unlike(ctx, "17_555") }},
		{"save", http.MethodPost, "media/{media_id}/save/", "media/17_555/save/", func() (json.RawMessage, error) { return c.Media.Save(ctx, "17_555") }},
		{"unsave", http.MethodPost, "media/{media_id}/unsave/", "media/17_555/unsave/", func() (json.RawMessage, error) { return c.Media.Unsave(ctx, "17_555") }},
		{"remove picture", http.MethodPost, "accounts/remove_profile_picture/", "accounts/remove_profile_picture/", func() (json.RawMessage, error) { return c.Profile.RemovePicture(ctx) }},
		{"set private", http.MethodPost, "accounts/set_private/", "accounts/set_private/", func() (json.RawMessage, error) { return c.Profile.SetPrivate(ctx) }},
		{"set public", http.MethodPost, "accounts/set_public/", "accounts/set_public/", func() (json.RawMessage, error) { return c.Profile.SetPublic(ctx) }},
		{"megaphone log", http.MethodGet, "megaphone/log/", "megaphone/log/", func() (json.RawMessage, error) { return c.Misc.MegaphoneLog(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms.SetJSON(tt.method, tt.route, `{"status":"ok"}`)
			ms.ClearLog()
			if _, err := tt.call(); err != nil {
				t.Fatalf("%s returned error: %v", tt.name, err)
			}
			reqs := ms.RequestsTo(tt.method, tt.path)
			if len(reqs) != 1 {
				t.Fatalf("expected one %s %s, got %d", tt.method, tt.path, len(reqs))
			}
			if tt.method == http.MethodPost {
				if payload := signedPayload(t, reqs[0].Body); payload["_uid"] != float64(555) {
					t.Errorf("expected signed envelope, got %v", payload)
				}
			}
		})
	}
}

func TestMisc_NeedsLogin(t *testing.T) {
	ms := newMockServer(t)
	c := newTestClient(t, ms)

	_, err := c.Misc.SyncFeatures(context.Background())
	var authErr *pkgerrs.AuthenticationRequiredError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationRequiredError, got %v", err)
	}
	if authErr.Operation != "qe/sync/" {
		t.Errorf("unexpected operation %q", authErr.Operation)
	}
}
