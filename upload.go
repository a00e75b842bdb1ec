package igapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/validation"
)

const (
	imageCompression = `{"lib_name":"jt","lib_version":"1.3.0","quality":"87"}`

	// videoChunks is the number of raw requests a video is split into.
	videoChunks = 4
	// videoUploadSlot is the entry of video_upload_urls the app uploads to.
	videoUploadSlot = 3
)

// deviceSettings describes the emulated handset in configure calls.
// It matches DefaultUserAgent.
var deviceSettings = map[string]any{
	"manufacturer":    "Xiaomi",
	"model":           "HM 1SW",
	"android_version": 18,
	"android_release": "4.3",
}

// UploadService posts photos, videos and albums.
type UploadService service

// Photo uploads a JPEG, PNG or GIF and publishes it with caption.
func (s *UploadService) Photo(ctx context.Context, data []byte, caption string) (json.RawMessage, error) {
	width, height, err := imageSize(data)
	if err != nil {
		return nil, err
	}
	uploadID := internal.GenerateUploadID(s.client.now())

	if err := s.sendPhoto(ctx, uploadID, data, false); err != nil {
		return nil, err
	}

	body, err := s.client.call(ctx, configurePhoto, nil, internal.Params{
		"media_folder": "Instagram",
		"source_type":  4,
		"caption":      caption,
		"upload_id":    uploadID,
		"device":       deviceSettings,
		"edits": map[string]any{
			"crop_original_size": []float64{float64(width), float64(height)},
			"crop_center":        []float64{0, 0},
			"crop_zoom":          1.0,
		},
		"extra": map[string]any{
			"source_width":  width,
			"source_height": height,
		},
	})
	if err != nil {
		return nil, err
	}
	s.expose(ctx)
	return body, nil
}

// Video uploads a video with its thumbnail and publishes it with caption.
// meta carries the duration and frame size, which the caller measures.
func (s *UploadService) Video(ctx context.Context, data, thumbnail []byte, meta types.VideoMeta, caption string) (json.RawMessage, error) {
	if len(data) < videoChunks {
		return nil, &pkgerrs.ValidationError{Field: "video", Message: "video data is too short"}
	}
	if len(thumbnail) == 0 {
		return nil, &pkgerrs.ValidationError{Field: "thumbnail", Message: "videos require a thumbnail"}
	}
	uploadID := internal.GenerateUploadID(s.client.now())

	if err := s.sendVideo(ctx, uploadID, data, false); err != nil {
		return nil, err
	}
	if err := s.sendPhoto(ctx, uploadID, thumbnail, false); err != nil {
		return nil, err
	}

	body, err := s.client.call(ctx, configureVideo, nil, internal.Params{
		"upload_id":          uploadID,
		"source_type":        3,
		"poster_frame_index": 0,
		"length":             0.0,
		"audio_muted":        false,
		"filter_type":        0,
		"video_result":       "deprecated",
		"clips": map[string]any{
			"length":          meta.Duration,
			"source_type":     "3",
			"camera_position": "back",
		},
		"extra": map[string]any{
			"source_width":  meta.Width,
			"source_height": meta.Height,
		},
		"device":  deviceSettings,
		"caption": caption,
	})
	if err != nil {
		return nil, err
	}
	s.expose(ctx)
	return body, nil
}

// Album uploads 2-10 photos and videos and publishes them as one post.
// Every item is validated before the first upload starts; a *errors.ValidationError
// means nothing was sent.
func (s *UploadService) Album(ctx context.Context, items []types.AlbumItem, caption string) (json.RawMessage, error) {
	if err := validation.ValidateAlbum(items); err != nil {
		return nil, err
	}

	now := s.client.now()
	uploadIDs := make([]string, len(items))
	for i := range items {
		uploadIDs[i] = internal.GenerateUploadID(now.Add(time.Duration(i+1) * time.Second))
	}

	for i, item := range items {
		var err error
		switch item.Type {
		case types.AlbumPhoto:
			err = s.sendPhoto(ctx, uploadIDs[i], item.Data, true)
		case types.AlbumVideo:
			if err = s.sendVideo(ctx, uploadIDs[i], item.Data, true); err == nil {
				err = s.sendPhoto(ctx, uploadIDs[i], item.Thumbnail, true)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	children, err := albumChildren(items, uploadIDs, now)
	if err != nil {
		return nil, err
	}
	return s.client.call(ctx, configureSidecar, nil, internal.Params{
		"client_sidecar_id": internal.GenerateUploadID(now),
		"caption":           caption,
		"children_metadata": children,
	})
}

// sendPhoto uploads image bytes under uploadID without publishing them.
func (s *UploadService) sendPhoto(ctx context.Context, uploadID string, data []byte, sidecar bool) error {
	parts := []internal.FormPart{
		{Name: "upload_id", Value: uploadID},
		{Name: "_uuid", Value: s.client.session.InstallUUID()},
		{Name: "_csrftoken", Value: s.client.session.CSRFToken()},
		{Name: "image_compression", Value: imageCompression},
		{
			Name:     "photo",
			FileName: "pending_media_" + uploadID + ".jpg",
			Data:     data,
			Header:   map[string]string{"Content-Transfer-Encoding": "binary"},
		},
	}
	if sidecar {
		parts = append(parts, internal.FormPart{Name: "is_sidecar", Value: "1"})
	}

	s.client.logger.Debug("uploading photo", "upload_id", uploadID, "size", humanize.Bytes(uint64(len(data))))
	_, err := s.multipart(ctx, uploadPhoto, parts)
	return err
}

// sendVideo reserves an upload slot and sends the video in videoChunks raw requests.
func (s *UploadService) sendVideo(ctx context.Context, uploadID string, data []byte, sidecar bool) error {
	parts := []internal.FormPart{
		{Name: "upload_id", Value: uploadID},
		{Name: "_csrftoken", Value: s.client.session.CSRFToken()},
		{Name: "media_type", Value: strconv.Itoa(int(types.MediaVideo))},
		{Name: "_uuid", Value: s.client.session.InstallUUID()},
	}
	if sidecar {
		parts = append(parts, internal.FormPart{Name: "is_sidecar", Value: "1"})
	}

	resp, err := s.multipart(ctx, uploadVideo, parts)
	if err != nil {
		return err
	}
	var slot types.VideoUploadResponse
	if err := resp.Decode(&slot); err != nil {
		return &pkgerrs.ParseError{Operation: "upload video", Err: err}
	}
	if len(slot.VideoUploadURLs) == 0 {
		return &pkgerrs.ParseError{Operation: "upload video", Message: "response has no video_upload_urls"}
	}
	target := slot.VideoUploadURLs[min(videoUploadSlot, len(slot.VideoUploadURLs)-1)]

	s.client.logger.Debug("uploading video",
		"upload_id", uploadID,
		"size", humanize.Bytes(uint64(len(data))),
		"chunks", videoChunks,
	)

	for _, c := range videoChunkRanges(len(data)) {
		header := http.Header{}
		header.Set("Connection", "keep-alive")
		header.Set("Content-Disposition", `attachment; filename="video.mov"`)
		header.Set("job", target.Job)
		header.Set("Session-ID", uploadID)
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", c.start, c.end-1, len(data)))

		if _, err := s.client.dispatcher.Send(ctx, &internal.Request{
			Path:         target.URL,
			RawURL:       true,
			Body:         data[c.start:c.end],
			ContentType:  "application/octet-stream",
			Header:       header,
			RequiresAuth: true,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *UploadService) multipart(ctx context.Context, e internal.Endpoint, parts []internal.FormPart) (*internal.Response, error) {
	body, contentType, err := internal.BuildMultipart(s.client.session.InstallUUID(), parts)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "encode upload", Err: err}
	}
	header := http.Header{}
	header.Set("Connection", "keep-alive")
	return e.CallMultipart(ctx, s.client.dispatcher, nil, body, contentType, header)
}

// expose is sent after a publish. Its failure does not undo the upload.
func (s *UploadService) expose(ctx context.Context) {
	if _, err := s.client.Misc.Expose(ctx); err != nil {
		s.client.logger.Warn("expose after upload failed", "error", err)
	}
}

type byteRange struct {
	start, end int
}

// videoChunkRanges splits n bytes into videoChunks ranges. The last range
// takes the remainder.
func videoChunkRanges(n int) []byteRange {
	size := n / videoChunks
	ranges := make([]byteRange, videoChunks)
	for i := range videoChunks {
		start := i * size
		end := start + size
		if i == videoChunks-1 {
			end = n
		}
		ranges[i] = byteRange{start: start, end: end}
	}
	return ranges
}

// albumChildren builds the children_metadata of a sidecar configure call.
func albumChildren(items []types.AlbumItem, uploadIDs []string, now time.Time) ([]map[string]any, error) {
	date := now.UTC().Format("2006-01-02T15:04:05.000000")
	children := make([]map[string]any, 0, len(items))
	for i, item := range items {
		switch item.Type {
		case types.AlbumPhoto:
			child := map[string]any{
				"date_time_original":  date,
				"scene_type":          1,
				"disable_comments":    false,
				"upload_id":           uploadIDs[i],
				"source_type":         0,
				"scene_capture_type":  "standard",
				"date_time_digitized": date,
				"geotag_enabled":      false,
				"camera_position":     "back",
				"edits": map[string]any{
					"filter_strength": 1,
					"filter_name":     "IGNormalFilter",
				},
			}
			if len(item.Usertags) > 0 {
				tags, err := json.Marshal(map[string]any{"in": item.Usertags})
				if err != nil {
					return nil, &pkgerrs.ClientError{Operation: "encode usertags", Err: err}
				}
				child["usertags"] = string(tags)
			}
			children = append(children, child)

		case types.AlbumVideo:
			duration := item.Video.Duration
			if duration == 0 {
				duration = 1.0
			}
			children = append(children, map[string]any{
				"length":             duration,
				"date_time_original": date,
				"scene_type":         1,
				"poster_frame_index": 0,
				"trim_type":          0,
				"disable_comments":   false,
				"upload_id":          uploadIDs[i],
				"source_type":        "library",
				"geotag_enabled":     false,
				"edits": map[string]any{
					"length":          duration,
					"cinema":          "unsupported",
					"original_length": duration,
					"source_type":     "library",
					"start_time":      0,
					"camera_position": "unknown",
					"trim_type":       0,
				},
			})
		}
	}
	return children, nil
}

// imageSize reads the dimensions from the image header.
func imageSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, &pkgerrs.ValidationError{Field: "photo", Message: "unsupported image: " + err.Error()}
	}
	return cfg.Width, cfg.Height, nil
}
