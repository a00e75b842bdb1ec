package igapi

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
)

// experiments is the feature list the app reports on qe/sync.
const experiments = "ig_android_progressive_jpeg,ig_creation_growth_holdout,ig_android_report_and_hide," +
	"ig_android_new_browser,ig_android_enable_share_to_whatsapp,ig_android_direct_drawing_in_quick_cam_universe," +
	"ig_android_profile_contextual_feed,ig_android_direct_inbox_search,ig_android_feed_seen_state_with_view_info," +
	"ig_android_sidecar_photo_fbupload_universe,ig_android_comment_inline_expansion_universe," +
	"ig_android_live_broadcast_blacklist,ig_android_video_captions_universe"

// exposeExperiment is the experiment the app exposes after each upload.
const exposeExperiment = "ig_android_profile_contextual_feed"

// MiscService covers calls that belong to no other group.
type MiscService service

// SyncFeatures reports the client's experiment set, as the app does after login.
func (s *MiscService) SyncFeatures(ctx context.Context) (json.RawMessage, error) {
	uid, err := s.client.userID("qe/sync/")
	if err != nil {
		return nil, err
	}
	return s.client.call(ctx, miscSyncFeatures, nil, internal.Params{
		"id":          uid,
		"experiments": experiments,
	})
}

// Expose marks the profile feed experiment as seen.
func (s *MiscService) Expose(ctx context.Context) (json.RawMessage, error) {
	uid, err := s.client.userID("qe/expose/")
	if err != nil {
		return nil, err
	}
	return s.client.call(ctx, miscExpose, nil, internal.Params{
		"id":         uid,
		"experiment": exposeExperiment,
	})
}

// MegaphoneLog reports that the in-app banner was seen.
func (s *MiscService) MegaphoneLog(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, miscMegaphoneLog, nil, nil)
}

// Explore returns the explore page.
func (s *MiscService) Explore(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, miscExplore, nil, nil)
}

// Popular returns the popular feed.
func (s *MiscService) Popular(ctx context.Context) (json.RawMessage, error) {
	return s.client.Feed.Popular(ctx)
}

// NewsInbox returns the activity feed of the logged-in user.
func (s *MiscService) NewsInbox(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, miscNewsInbox, nil, nil)
}
