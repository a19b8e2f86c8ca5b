package services_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"
	"github.com/bionicotaku/lingo-services-gallery/internal/repositories"
	"github.com/bionicotaku/lingo-services-gallery/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

type videoRepoStub struct {
	createInput repositories.CreateVideoInput
	updateInput repositories.UpdateVideoInput
	deletedID   uuid.UUID

	findVideo   *po.Video
	video       *po.Video
	listVideos  []*po.Video
	createErr   error
	updateErr   error
	deleteErr   error
	findErr     error
	listErr     error
	createCalls int
}

func (s *videoRepoStub) Create(_ context.Context, _ txmanager.Session, input repositories.CreateVideoInput) (*po.Video, error) {
	s.createCalls++
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.video != nil {
		return s.video, nil
	}
	return &po.Video{VideoID: input.VideoID, Title: input.Title, Platform: input.Platform}, nil
}

func (s *videoRepoStub) Update(_ context.Context, _ txmanager.Session, input repositories.UpdateVideoInput) (*po.Video, error) {
	s.updateInput = input
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.video != nil {
		return s.video, nil
	}
	return &po.Video{VideoID: input.VideoID}, nil
}

func (s *videoRepoStub) Delete(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	s.deletedID = videoID
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.findVideo, nil
}

func (s *videoRepoStub) FindByID(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.findVideo == nil {
		return nil, repositories.ErrVideoNotFound
	}
	return s.findVideo, nil
}

func (s *videoRepoStub) List(_ context.Context, _ txmanager.Session) ([]*po.Video, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listVideos, nil
}

type blobStoreStub struct {
	puts     map[string][]byte
	putTypes map[string]string
	removed  []string
	putErr   error
	remErr   error
}

func newBlobStoreStub() *blobStoreStub {
	return &blobStoreStub{puts: map[string][]byte{}, putTypes: map[string]string{}}
}

func (s *blobStoreStub) Put(_ context.Context, objectPath string, data []byte, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts[objectPath] = append([]byte(nil), data...)
	s.putTypes[objectPath] = contentType
	return nil
}

func (s *blobStoreStub) Remove(_ context.Context, objectPath string) error {
	if s.remErr != nil {
		return s.remErr
	}
	s.removed = append(s.removed, objectPath)
	return nil
}

func (s *blobStoreStub) PublicURL(objectPath string) string {
	return "https://storage.example.com/bucket/" + objectPath
}

func newCommandService(repo *videoRepoStub, blobs *blobStoreStub) *services.VideoCommandService {
	return services.NewVideoCommandService(repo, blobs, noopTxManager{}, log.NewStdLogger(io.Discard))
}

func TestCreateVideoExternalSkipsBlobStore(t *testing.T) {
	repo := &videoRepoStub{}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	created, err := svc.CreateVideo(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if created == nil || created.VideoID == uuid.Nil {
		t.Fatalf("expected created video, got %+v", created)
	}
	if len(blobs.puts) != 0 {
		t.Fatal("blob store must not be touched for external sources")
	}
	if repo.createInput.SourceKind != po.SourceKindExternal {
		t.Fatalf("source_kind = %s, want external", repo.createInput.SourceKind)
	}
	if repo.createInput.ExternalURL == nil || *repo.createInput.ExternalURL != validInput().ExternalURL {
		t.Fatalf("external url not persisted: %+v", repo.createInput.ExternalURL)
	}
}

func TestCreateVideoUploadWritesBlobBeforeRecord(t *testing.T) {
	repo := &videoRepoStub{}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	input := validInput()
	input.ExternalURL = ""
	input.Upload = &services.UploadPayload{Filename: "clip.webm", EncodedData: "aGVsbG8="}

	created, err := svc.CreateVideo(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if created.Platform != string(po.PlatformUpload) {
		t.Fatalf("platform = %s, want upload", created.Platform)
	}
	if len(blobs.puts) != 1 {
		t.Fatalf("expected one blob write, got %d", len(blobs.puts))
	}
	for path, data := range blobs.puts {
		if string(data) != "hello" {
			t.Fatalf("blob bytes = %q, want decoded payload", data)
		}
		if blobs.putTypes[path] != "video/webm" {
			t.Fatalf("content type = %s, want video/webm", blobs.putTypes[path])
		}
		if repo.createInput.StoragePath == nil || *repo.createInput.StoragePath != path {
			t.Fatalf("record must point at blob path %s, got %+v", path, repo.createInput.StoragePath)
		}
	}
	if repo.createInput.SourceKind != po.SourceKindStored {
		t.Fatalf("source_kind = %s, want stored", repo.createInput.SourceKind)
	}
}

func TestCreateVideoDataURIPrefixAccepted(t *testing.T) {
	repo := &videoRepoStub{}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	input := validInput()
	input.ExternalURL = ""
	input.Upload = &services.UploadPayload{Filename: "clip.mp4", EncodedData: "data:video/mp4;base64,aGVsbG8="}

	if _, err := svc.CreateVideo(context.Background(), input); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	for _, data := range blobs.puts {
		if string(data) != "hello" {
			t.Fatalf("blob bytes = %q, want decoded payload", data)
		}
	}
}

func TestCreateVideoInvalidBase64Rejected(t *testing.T) {
	repo := &videoRepoStub{}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	input := validInput()
	input.ExternalURL = ""
	input.Upload = &services.UploadPayload{Filename: "clip.mp4", EncodedData: "not-base64!!!"}

	_, err := svc.CreateVideo(context.Background(), input)
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if kerr := kerrors.FromError(err); kerr.Reason != services.ReasonValidationFailed {
		t.Fatalf("reason = %s, want %s", kerr.Reason, services.ReasonValidationFailed)
	}
	if len(blobs.puts) != 0 || repo.createCalls != 0 {
		t.Fatal("no side effects expected for invalid payload")
	}
}

func TestCreateVideoBlobFailureStopsRecord(t *testing.T) {
	repo := &videoRepoStub{}
	blobs := newBlobStoreStub()
	blobs.putErr = errors.New("bucket down")
	svc := newCommandService(repo, blobs)

	input := validInput()
	input.ExternalURL = ""
	input.Upload = &services.UploadPayload{Filename: "clip.mp4", EncodedData: "aGVsbG8="}

	_, err := svc.CreateVideo(context.Background(), input)
	if err == nil {
		t.Fatal("expected error when blob store fails")
	}
	if kerr := kerrors.FromError(err); kerr.Reason != services.ReasonStorageUnavailable {
		t.Fatalf("reason = %s, want %s", kerr.Reason, services.ReasonStorageUnavailable)
	}
	if repo.createCalls != 0 {
		t.Fatal("record store must not be touched when blob write fails")
	}
}

func TestCreateVideoRecordFailureCleansUpBlob(t *testing.T) {
	repo := &videoRepoStub{createErr: errors.New("db down")}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	input := validInput()
	input.ExternalURL = ""
	input.Upload = &services.UploadPayload{Filename: "clip.mp4", EncodedData: "aGVsbG8="}

	_, err := svc.CreateVideo(context.Background(), input)
	if err == nil {
		t.Fatal("expected error when record insert fails")
	}
	if len(blobs.removed) != 1 {
		t.Fatalf("expected fresh blob cleanup, removed=%v", blobs.removed)
	}
	for path := range blobs.puts {
		if blobs.removed[0] != path {
			t.Fatalf("removed %s, want %s", blobs.removed[0], path)
		}
	}
}

func TestUpdateVideoNoFieldsRejected(t *testing.T) {
	svc := newCommandService(&videoRepoStub{}, newBlobStoreStub())

	_, err := svc.UpdateVideo(context.Background(), services.UpdateVideoInput{VideoID: uuid.New()})
	if err == nil {
		t.Fatal("expected error for empty update")
	}
	if kerr := kerrors.FromError(err); kerr.Reason != services.ReasonVideoUpdateInvalid {
		t.Fatalf("reason = %s, want %s", kerr.Reason, services.ReasonVideoUpdateInvalid)
	}
}

func TestUpdateVideoNotFound(t *testing.T) {
	svc := newCommandService(&videoRepoStub{}, newBlobStoreStub())

	title := "New title"
	_, err := svc.UpdateVideo(context.Background(), services.UpdateVideoInput{VideoID: uuid.New(), Title: &title})
	if !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateVideoReplaceUploadLeavesOldBlob(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{
			VideoID:  videoID,
			Platform: po.PlatformUpload,
			Source:   po.StoredSource("videos/20250101/old/clip.mp4"),
		},
	}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	updated, err := svc.UpdateVideo(context.Background(), services.UpdateVideoInput{
		VideoID: videoID,
		Upload:  &services.UploadPayload{Filename: "new.mp4", EncodedData: "aGVsbG8="},
	})
	if err != nil {
		t.Fatalf("UpdateVideo: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated response")
	}
	if len(blobs.puts) != 1 {
		t.Fatalf("expected new blob write, got %d", len(blobs.puts))
	}
	// 写后留存：旧对象只告警不删除
	if len(blobs.removed) != 0 {
		t.Fatalf("old blob must not be removed, removed=%v", blobs.removed)
	}
	if repo.updateInput.SourceKind == nil || *repo.updateInput.SourceKind != po.SourceKindStored {
		t.Fatalf("source_kind = %+v, want stored", repo.updateInput.SourceKind)
	}
	if repo.updateInput.Platform == nil || *repo.updateInput.Platform != po.PlatformUpload {
		t.Fatalf("platform = %+v, want upload", repo.updateInput.Platform)
	}
}

func TestUpdateVideoSwitchToExternalReplacesSourceAtomically(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{
			VideoID:  videoID,
			Platform: po.PlatformUpload,
			Source:   po.StoredSource("videos/20250101/old/clip.mp4"),
		},
	}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	url := "https://vimeo.com/76979871"
	_, err := svc.UpdateVideo(context.Background(), services.UpdateVideoInput{VideoID: videoID, ExternalURL: &url})
	if err != nil {
		t.Fatalf("UpdateVideo: %v", err)
	}
	if repo.updateInput.SourceKind == nil || *repo.updateInput.SourceKind != po.SourceKindExternal {
		t.Fatalf("source_kind = %+v, want external", repo.updateInput.SourceKind)
	}
	if repo.updateInput.ExternalURL == nil || *repo.updateInput.ExternalURL != url {
		t.Fatalf("external url = %+v, want %s", repo.updateInput.ExternalURL, url)
	}
	if repo.updateInput.Platform == nil || *repo.updateInput.Platform != po.PlatformVimeo {
		t.Fatalf("platform = %+v, want vimeo", repo.updateInput.Platform)
	}
}

func TestUpdateVideoRecordFailureCleansUpNewBlob(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{VideoID: videoID, Platform: po.PlatformUpload, Source: po.StoredSource("videos/old/clip.mp4")},
		updateErr: errors.New("db down"),
	}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	_, err := svc.UpdateVideo(context.Background(), services.UpdateVideoInput{
		VideoID: videoID,
		Upload:  &services.UploadPayload{Filename: "new.mp4", EncodedData: "aGVsbG8="},
	})
	if err == nil {
		t.Fatal("expected error when record update fails")
	}
	if len(blobs.removed) != 1 {
		t.Fatalf("expected new blob cleanup, removed=%v", blobs.removed)
	}
}

func TestDeleteVideoRemovesStoredBlob(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{VideoID: videoID, Platform: po.PlatformUpload, Source: po.StoredSource("videos/old/clip.mp4")},
	}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	deleted, err := svc.DeleteVideo(context.Background(), services.DeleteVideoInput{VideoID: videoID})
	if err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}
	if !deleted.BlobRemoved {
		t.Fatal("expected blob_removed = true")
	}
	if len(blobs.removed) != 1 || blobs.removed[0] != "videos/old/clip.mp4" {
		t.Fatalf("removed = %v", blobs.removed)
	}
	if repo.deletedID != videoID {
		t.Fatalf("deleted id = %s, want %s", repo.deletedID, videoID)
	}
}

func TestDeleteVideoBlobFailureStillDeletesRecord(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{VideoID: videoID, Platform: po.PlatformUpload, Source: po.StoredSource("videos/old/clip.mp4")},
	}
	blobs := newBlobStoreStub()
	blobs.remErr = errors.New("bucket down")
	svc := newCommandService(repo, blobs)

	deleted, err := svc.DeleteVideo(context.Background(), services.DeleteVideoInput{VideoID: videoID})
	if err != nil {
		t.Fatalf("DeleteVideo must succeed despite blob failure: %v", err)
	}
	if deleted.BlobRemoved {
		t.Fatal("expected blob_removed = false")
	}
	if repo.deletedID != videoID {
		t.Fatal("record row must still be deleted")
	}
}

func TestDeleteVideoExternalSkipsBlobStore(t *testing.T) {
	videoID := uuid.New()
	repo := &videoRepoStub{
		findVideo: &po.Video{VideoID: videoID, Platform: po.PlatformVimeo, Source: po.ExternalSource("https://vimeo.com/1")},
	}
	blobs := newBlobStoreStub()
	svc := newCommandService(repo, blobs)

	deleted, err := svc.DeleteVideo(context.Background(), services.DeleteVideoInput{VideoID: videoID})
	if err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}
	if deleted.BlobRemoved {
		t.Fatal("external source has no blob to remove")
	}
	if len(blobs.removed) != 0 {
		t.Fatalf("removed = %v", blobs.removed)
	}
}

func TestDeleteVideoNotFound(t *testing.T) {
	svc := newCommandService(&videoRepoStub{}, newBlobStoreStub())

	_, err := svc.DeleteVideo(context.Background(), services.DeleteVideoInput{VideoID: uuid.New()})
	if !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
