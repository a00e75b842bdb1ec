package igapi

import "github.com/jamesprial/go-instagram-api-wrapper/internal"

var (
	get  = internal.GET
	post = internal.POST

	ranked    = internal.Ranked()
	anonymous = internal.Anonymous()
)

// Account
var (
	fetchHeaders = get("si/fetch_headers/", anonymous)
	login        = post("accounts/login/", anonymous)
	logout       = get("accounts/logout/")
)

// Friendships
var (
	friendsAutocomplete = get("friendships/autocomplete_user_list/")
	friendsShow         = post("friendships/show/{user_id}/")
	friendsFollowing    = get("friendships/{user_id}/following/", ranked)
	friendsFollowers    = get("friendships/{user_id}/followers/", ranked)
	friendsCreate       = post("friendships/create/{user_id}/")
	friendsDestroy      = post("friendships/destroy/{user_id}/")
	friendsPending      = get("friendships/pending/")
	friendsApprove      = post("friendships/approve/{user_id}/")
	friendsIgnore       = post("friendships/ignore/{user_id}/")
	friendsBlock        = post("friendships/block/{user_id}/")
	friendsUnblock      = post("friendships/unblock/{user_id}/")
)

// Feeds
var (
	feedStories  = get("feed/user/{user_id}/reel_media/")
	feedSaved    = get("feed/saved/")
	feedTag      = get("feed/tag/{tag}/", ranked)
	feedTimeline = get("feed/timeline/", ranked)
	feedUser     = get("feed/user/{user_id}/", ranked)
	feedLocation = get("feed/location/{location_id}/", ranked)
	feedPopular  = get("feed/popular/", ranked)
	feedLiked    = get("feed/liked/")
)

// Media
var (
	mediaEdit          = post("media/{media_id}/edit_media/")
	mediaRemoveTag     = post("media/{media_id}/remove/")
	mediaInfo          = post("media/{media_id}/info/")
	mediaDelete        = post("media/{media_id}/delete/")
	mediaLikers        = get("media/{media_id}/likers/")
	mediaLike          = post("media/{media_id}/like/")
	mediaUnlike        = post("media/{media_id}/unlike/")
	mediaSave          = post("media/{media_id}/save/")
	mediaUnsave        = post("media/{media_id}/unsave/")
	mediaComment       = post("media/{media_id}/comment/")
	mediaDeleteComment = post("media/{media_id}/comment/{comment_id}/delete/")
	mediaComments      = get("media/{media_id}/comments/")
)

// Direct messages
var (
	directInbox      = get("direct_v2/inbox/")
	directThread     = get("direct_v2/threads/{thread}/")
	directShareInbox = get("direct_share/inbox/")
	directText       = post("direct_v2/threads/broadcast/text/")
	directMediaShare = post("direct_v2/threads/broadcast/media_share/?media_type=photo")
)

// Live
var (
	liveCreate    = post("live/create/")
	liveStart     = post("live/{broadcast_id}/start/")
	liveEnd       = post("live/{broadcast_id}/end_broadcast/")
	liveAddToPost = post("live/{broadcast_id}/add_to_post_live/")
)

// Users, hashtags, locations
var (
	usersInfo         = get("users/{user_id}/info/")
	usersSearch       = get("users/search/", ranked)
	usersUsernameInfo = get("users/{username}/usernameinfo/")

	tagsSearch = get("tags/search/", ranked)

	locationsOfUser = get("maps/user/{user_id}/")
	locationsSearch = get("fbsearch/places/", ranked)
)

// Profile
var (
	profileChangePassword = post("accounts/change_password/")
	profileRemovePicture  = post("accounts/remove_profile_picture/")
	profileSetPrivate     = post("accounts/set_private/")
	profileSetPublic      = post("accounts/set_public/")
	profileCurrentUser    = post("accounts/current_user/?edit=true")
	profileEdit           = post("accounts/edit_profile/")
	profileSetNamePhone   = post("accounts/set_phone_and_name/")
)

// Misc
var (
	miscSyncFeatures = post("qe/sync/")
	miscExpose       = post("qe/expose/")
	miscMegaphoneLog = get("megaphone/log/")
	miscExplore      = get("discover/explore/")
	miscNewsInbox    = get("news/inbox/")
)

// Uploads
var (
	uploadPhoto      = post("upload/photo/")
	uploadVideo      = post("upload/video/")
	configurePhoto   = post("media/configure/")
	configureVideo   = post("media/configure/?video=1")
	configureSidecar = post("media/configure_sidecar/")
)
