package services_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"
	"github.com/bionicotaku/lingo-services-gallery/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

func newQueryService(repo *videoRepoStub) *services.VideoQueryService {
	logger := log.NewStdLogger(io.Discard)
	resolver := services.NewSourceResolver(&stubURLResolver{base: "https://storage.example.com/bucket"}, logger)
	return services.NewVideoQueryService(repo, resolver, noopTxManager{}, logger)
}

func TestGetVideoResolvesPlayback(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{
			VideoID:   videoID,
			Title:     "demo",
			Platform:  po.PlatformUpload,
			Tags:      []string{"demo"},
			Source:    po.StoredSource("videos/20250101/abc/clip.mp4"),
			CreatedAt: time.Now().UTC(),
		},
	}
	svc := newQueryService(repo)

	detail, err := svc.GetVideo(context.Background(), videoID)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if !detail.PlaybackAvailable {
		t.Fatal("expected playable source")
	}
	want := "https://storage.example.com/bucket/videos/20250101/abc/clip.mp4"
	if detail.PlaybackURL != want {
		t.Fatalf("playback url = %s, want %s", detail.PlaybackURL, want)
	}
}

func TestGetVideoNotFound(t *testing.T) {
	svc := newQueryService(&videoRepoStub{})

	_, err := svc.GetVideo(context.Background(), uuid.New())
	if !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetVideoWithoutSourceRendersPlaceholder(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{VideoID: videoID, Title: "demo", Platform: po.PlatformUpload},
	}
	svc := newQueryService(repo)

	detail, err := svc.GetVideo(context.Background(), videoID)
	if err != nil {
		t.Fatalf("missing source must not be an error: %v", err)
	}
	if detail.PlaybackAvailable {
		t.Fatal("expected playback_available = false")
	}
	if detail.PlaybackURL != "" {
		t.Fatalf("playback url = %q, want empty", detail.PlaybackURL)
	}
}

func TestListVideosResolvesEachEntry(t *testing.T) {
	repo := &videoRepoStub{
		listVideos: []*po.Video{
			{VideoID: uuid.New(), Platform: po.PlatformYouTube, Source: po.ExternalSource("https://youtu.be/abc")},
			{VideoID: uuid.New(), Platform: po.PlatformUpload, Source: po.StoredSource("videos/a/clip.mp4")},
			{VideoID: uuid.New(), Platform: po.PlatformUpload}, // 无来源也要出现在列表中
		},
	}
	svc := newQueryService(repo)

	details, err := svc.ListVideos(context.Background())
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(details))
	}
	if !details[0].PlaybackAvailable || details[0].PlaybackURL != "https://youtu.be/abc" {
		t.Fatalf("entry 0 = %+v", details[0])
	}
	if !details[1].PlaybackAvailable {
		t.Fatalf("entry 1 = %+v", details[1])
	}
	if details[2].PlaybackAvailable {
		t.Fatalf("entry 2 should be a placeholder, got %+v", details[2])
	}
}

func TestListVideosEmpty(t *testing.T) {
	svc := newQueryService(&videoRepoStub{})

	details, err := svc.ListVideos(context.Background())
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(details))
	}
}

func TestListVideosRepoError(t *testing.T) {
	repo := &videoRepoStub{listErr: errors.New("db down")}
	svc := newQueryService(repo)

	_, err := svc.ListVideos(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kerr := kerrors.FromError(err); kerr.Reason != services.ReasonCommandFailed {
		t.Fatalf("reason = %s", kerr.Reason)
	}
}
