package dto_test

import (
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-gallery/internal/models/vo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToVideoInput(t *testing.T) {
	t.Run("full request with upload payload", func(t *testing.T) {
		req := &dto.CreateVideoRequest{
			Title:           "Test Video",
			Description:     "desc",
			Transcript:      "words",
			ThumbnailURL:    "https://cdn.example.com/t.jpg",
			Tags:            []string{"a", "b"},
			DurationSeconds: 42,
			Upload: &dto.UploadPayloadRequest{
				Filename:    "clip.mp4",
				EncodedData: "aGVsbG8=",
			},
			CapturedAt: "2025-06-01",
		}

		input, err := dto.ToVideoInput(req)

		require.NoError(t, err)
		assert.Equal(t, "Test Video", input.Title)
		assert.Equal(t, []string{"a", "b"}, input.Tags)
		require.NotNil(t, input.Upload)
		assert.Equal(t, "clip.mp4", input.Upload.Filename)
		require.NotNil(t, input.CapturedAt)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *input.CapturedAt)
	})

	t.Run("external url without captured_at", func(t *testing.T) {
		req := &dto.CreateVideoRequest{
			Title:       "Test Video",
			ExternalURL: "https://youtu.be/abc",
		}

		input, err := dto.ToVideoInput(req)

		require.NoError(t, err)
		assert.Equal(t, "https://youtu.be/abc", input.ExternalURL)
		assert.Nil(t, input.Upload)
		assert.Nil(t, input.CapturedAt)
	})

	t.Run("invalid captured_at", func(t *testing.T) {
		req := &dto.CreateVideoRequest{Title: "x", CapturedAt: "01/06/2025"}

		_, err := dto.ToVideoInput(req)

		assert.Error(t, err)
	})
}

func TestToUpdateVideoInput(t *testing.T) {
	videoID := uuid.New()
	title := "New title"
	capturedAt := "2025-01-15"

	input, err := dto.ToUpdateVideoInput(videoID, &dto.UpdateVideoRequest{
		Title:      &title,
		CapturedAt: &capturedAt,
		Upload: &dto.UploadPayloadRequest{
			Filename:    "new.mp4",
			EncodedData: "aGVsbG8=",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, videoID, input.VideoID)
	require.NotNil(t, input.Title)
	assert.Equal(t, title, *input.Title)
	assert.Nil(t, input.Description)
	require.NotNil(t, input.Upload)
	require.NotNil(t, input.CapturedAt)
}

func TestParseVideoID(t *testing.T) {
	id := uuid.New()

	parsed, err := dto.ParseVideoID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = dto.ParseVideoID("not-a-uuid")
	assert.Error(t, err)
}

func TestResponseBuilders(t *testing.T) {
	videoID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	created := dto.NewCreateVideoResponse(&vo.VideoCreated{VideoID: videoID, Platform: "upload", CreatedAt: now})
	assert.Equal(t, videoID.String(), created.VideoID)
	assert.Equal(t, "upload", created.Platform)
	assert.Equal(t, "2025-06-01T12:00:00Z", created.CreatedAt)

	deleted := dto.NewDeleteVideoResponse(&vo.VideoDeleted{VideoID: videoID, DeletedAt: now, BlobRemoved: true})
	assert.True(t, deleted.BlobRemoved)

	// nil 输入返回零值响应而不是 panic
	assert.NotNil(t, dto.NewCreateVideoResponse(nil))
	assert.NotNil(t, dto.NewUpdateVideoResponse(nil))
	assert.NotNil(t, dto.NewDeleteVideoResponse(nil))
}
