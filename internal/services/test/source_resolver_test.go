package services_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"
	"github.com/bionicotaku/lingo-services-gallery/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

type stubURLResolver struct {
	base string
}

func (s *stubURLResolver) PublicURL(objectPath string) string {
	return s.base + "/" + objectPath
}

func newResolver() *services.SourceResolver {
	return services.NewSourceResolver(&stubURLResolver{base: "https://storage.example.com/bucket"}, log.NewStdLogger(io.Discard))
}

func TestResolvePlaybackExternal(t *testing.T) {
	r := newResolver()
	video := &po.Video{
		VideoID:  uuid.New(),
		Platform: po.PlatformYouTube,
		Source:   po.ExternalSource("https://www.youtube.com/watch?v=abc"),
	}

	src, err := r.ResolvePlayback(video)
	if err != nil {
		t.Fatalf("ResolvePlayback: %v", err)
	}
	if src.URL != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("expected verbatim url, got %s", src.URL)
	}
	if src.Kind != po.SourceKindExternal {
		t.Fatalf("kind = %s", src.Kind)
	}
}

func TestResolvePlaybackStored(t *testing.T) {
	r := newResolver()
	video := &po.Video{
		VideoID:  uuid.New(),
		Platform: po.PlatformUpload,
		Source:   po.StoredSource("videos/20250101/abc/clip.mp4"),
	}

	src, err := r.ResolvePlayback(video)
	if err != nil {
		t.Fatalf("ResolvePlayback: %v", err)
	}
	want := "https://storage.example.com/bucket/videos/20250101/abc/clip.mp4"
	if src.URL != want {
		t.Fatalf("url = %s, want %s", src.URL, want)
	}
}

func TestResolvePlaybackInlinePending(t *testing.T) {
	r := newResolver()
	video := &po.Video{
		VideoID:  uuid.New(),
		Platform: po.PlatformUpload,
		Source:   po.InlineSource("aGVsbG8=", "clip.webm"),
	}

	src, err := r.ResolvePlayback(video)
	if err != nil {
		t.Fatalf("ResolvePlayback: %v", err)
	}
	if !strings.HasPrefix(src.URL, "data:video/webm;base64,") {
		t.Fatalf("expected data uri with webm mime, got %s", src.URL)
	}
	if !strings.HasSuffix(src.URL, "aGVsbG8=") {
		t.Fatalf("expected payload suffix, got %s", src.URL)
	}
}

func TestResolvePlaybackNoSource(t *testing.T) {
	r := newResolver()
	video := &po.Video{VideoID: uuid.New(), Platform: po.PlatformUpload}

	_, err := r.ResolvePlayback(video)
	if !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}

	if _, err := r.ResolvePlayback(nil); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for nil video, got %v", err)
	}
}

func TestMIMEForFilename(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":  "video/mp4",
		"CLIP.MOV":  "video/quicktime",
		"clip.webm": "video/webm",
		"clip.m4v":  "video/x-m4v",
		"clip.3gp":  "video/3gpp",
		"clip.avi":  "video/mp4",
		"noext":     "video/mp4",
	}
	for name, want := range cases {
		if got := services.MIMEForFilename(name); got != want {
			t.Errorf("MIMEForFilename(%q) = %s, want %s", name, got, want)
		}
	}
}
