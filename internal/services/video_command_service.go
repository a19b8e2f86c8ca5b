package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"
	"github.com/bionicotaku/lingo-services-gallery/internal/models/vo"
	"github.com/bionicotaku/lingo-services-gallery/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// VideoRepo 定义 Video 实体的持久化行为接口。
type VideoRepo interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreateVideoInput) (*po.Video, error)
	Update(ctx context.Context, sess txmanager.Session, input repositories.UpdateVideoInput) (*po.Video, error)
	Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	FindByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	List(ctx context.Context, sess txmanager.Session) ([]*po.Video, error)
}

// BlobStore 定义 Blob Store 协作方的行为。
// Put/Remove 为单次、可失败、由调用方限定超时的操作；本层不做重试。
type BlobStore interface {
	Put(ctx context.Context, objectPath string, data []byte, contentType string) error
	Remove(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
}

// VideoCommandService 串联写路径：校验 → Blob Store 落盘 → Record Store 落库。
// 每个请求独立处理，跨请求不共享可变内存状态。
type VideoCommandService struct {
	repo      VideoRepo
	blobs     BlobStore
	txManager txmanager.Manager
	log       *log.Helper
	now       func() time.Time
}

// NewVideoCommandService 构造写路径服务。
func NewVideoCommandService(repo VideoRepo, blobs BlobStore, tx txmanager.Manager, logger log.Logger) *VideoCommandService {
	return &VideoCommandService{
		repo:      repo,
		blobs:     blobs,
		txManager: tx,
		log:       log.NewHelper(logger),
		now:       time.Now,
	}
}

// CreateVideo 创建新视频记录。
//
// 流程：校验 → 如携带上传载荷则解码并写入 Blob Store（时间前缀 + 随机段 +
// 原始文件名，避免路径冲突）→ 落库时 Source 永远是外链或对象路径，绝不是
// 原始字节。落库失败时尽力回收刚写入的对象，保证不产生无主数据。
func (s *VideoCommandService) CreateVideo(ctx context.Context, input VideoInput) (*vo.VideoCreated, error) {
	validated, err := ValidateVideoInput(input)
	if err != nil {
		return nil, err
	}

	repoInput := repositories.CreateVideoInput{
		VideoID:         uuid.New(),
		Title:           validated.Title,
		Description:     validated.Description,
		Transcript:      validated.Transcript,
		ThumbnailURL:    validated.ThumbnailURL,
		Platform:        validated.Platform,
		Tags:            validated.Tags,
		DurationSeconds: validated.DurationSeconds,
		CapturedAt:      validated.CapturedAt,
	}

	var blobPath string
	if validated.Upload != nil {
		data, decodeErr := decodeUploadPayload(validated.Upload.EncodedData)
		if decodeErr != nil {
			return nil, kerrors.BadRequest(ReasonValidationFailed, "invalid video submission").
				WithMetadata(map[string]string{"upload": "upload payload is not valid base64"})
		}
		blobPath = s.objectPath(validated.Upload.Filename)
		if putErr := s.blobs.Put(ctx, blobPath, data, MIMEForFilename(validated.Upload.Filename)); putErr != nil {
			s.log.WithContext(ctx).Errorf("blob upload failed: path=%s err=%v", blobPath, putErr)
			return nil, kerrors.ServiceUnavailable(ReasonStorageUnavailable, "blob store unreachable").
				WithCause(fmt.Errorf("put blob: %w", putErr))
		}
		repoInput.SourceKind = po.SourceKindStored
		repoInput.StoragePath = &blobPath
	} else {
		externalURL := validated.ExternalURL
		repoInput.SourceKind = po.SourceKindExternal
		repoInput.ExternalURL = &externalURL
	}

	var created *po.Video
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		video, repoErr := s.repo.Create(txCtx, sess, repoInput)
		if repoErr != nil {
			return repoErr
		}
		created = video
		return nil
	})
	if err != nil {
		// 落库失败时回收刚写入的对象，失败只记日志。
		if blobPath != "" {
			if cleanupErr := s.blobs.Remove(ctx, blobPath); cleanupErr != nil {
				s.log.WithContext(ctx).Warnf("cleanup of unreferenced blob failed: path=%s err=%v", blobPath, cleanupErr)
			}
		}
		if kerrors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("create video timeout: title=%s", validated.Title)
			return nil, kerrors.GatewayTimeout(ReasonQueryTimeout, "create timeout")
		}
		s.log.WithContext(ctx).Errorf("create video failed: title=%s err=%v", validated.Title, err)
		return nil, kerrors.InternalServer(ReasonCommandFailed, "failed to create video").WithCause(fmt.Errorf("create video: %w", err))
	}

	s.log.WithContext(ctx).Infof("CreateVideo: video_id=%s platform=%s", created.VideoID, created.Platform)
	return vo.NewVideoCreated(created), nil
}

// UpdateVideo 更新视频元数据，必要时替换媒体来源。
//
// 携带新上传载荷时先写新对象、再把记录指向新路径；旧对象不在本流程删除，
// 只记 orphaned blob 警告日志，留给带外回收（写后留存策略：若先删后写，
// 行更新失败会丢失唯一一份旧媒体）。
func (s *VideoCommandService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*vo.VideoUpdated, error) {
	if !hasUpdateFields(input) {
		return nil, kerrors.BadRequest(ReasonVideoUpdateInvalid, "no fields to update")
	}

	validated, err := ValidateVideoUpdate(input)
	if err != nil {
		return nil, err
	}

	repoInput := repositories.UpdateVideoInput{
		VideoID:         validated.VideoID,
		Title:           validated.Title,
		Description:     validated.Description,
		Transcript:      validated.Transcript,
		ThumbnailURL:    validated.ThumbnailURL,
		Tags:            validated.Tags,
		DurationSeconds: validated.DurationSeconds,
		CapturedAt:      validated.CapturedAt,
	}

	var newBlobPath string
	switch {
	case validated.ExternalURL != nil:
		platform, _ := detectPlatform(*validated.ExternalURL)
		kind := po.SourceKindExternal
		repoInput.SourceKind = &kind
		repoInput.ExternalURL = validated.ExternalURL
		repoInput.Platform = &platform
	case validated.Upload != nil:
		data, decodeErr := decodeUploadPayload(validated.Upload.EncodedData)
		if decodeErr != nil {
			return nil, kerrors.BadRequest(ReasonValidationFailed, "invalid video submission").
				WithMetadata(map[string]string{"upload": "upload payload is not valid base64"})
		}
		newBlobPath = s.objectPath(validated.Upload.Filename)
		if putErr := s.blobs.Put(ctx, newBlobPath, data, MIMEForFilename(validated.Upload.Filename)); putErr != nil {
			s.log.WithContext(ctx).Errorf("blob upload failed: path=%s err=%v", newBlobPath, putErr)
			return nil, kerrors.ServiceUnavailable(ReasonStorageUnavailable, "blob store unreachable").
				WithCause(fmt.Errorf("put blob: %w", putErr))
		}
		kind := po.SourceKindStored
		platform := po.PlatformUpload
		repoInput.SourceKind = &kind
		repoInput.StoragePath = &newBlobPath
		repoInput.Platform = &platform
	}

	var previous *po.Video
	var updated *po.Video
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		existing, repoErr := s.repo.FindByID(txCtx, sess, validated.VideoID)
		if repoErr != nil {
			return repoErr
		}
		previous = existing

		video, repoErr := s.repo.Update(txCtx, sess, repoInput)
		if repoErr != nil {
			return repoErr
		}
		updated = video
		return nil
	})
	if err != nil {
		if newBlobPath != "" {
			if cleanupErr := s.blobs.Remove(ctx, newBlobPath); cleanupErr != nil {
				s.log.WithContext(ctx).Warnf("cleanup of unreferenced blob failed: path=%s err=%v", newBlobPath, cleanupErr)
			}
		}
		if kerrors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		if kerrors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("update video timeout: video_id=%s", validated.VideoID)
			return nil, kerrors.GatewayTimeout(ReasonQueryTimeout, "update timeout")
		}
		s.log.WithContext(ctx).Errorf("update video failed: video_id=%s err=%v", validated.VideoID, err)
		return nil, kerrors.InternalServer(ReasonCommandFailed, "failed to update video").WithCause(fmt.Errorf("update video: %w", err))
	}

	if newBlobPath != "" && previous.Source.Kind == po.SourceKindStored && previous.Source.StoragePath != newBlobPath {
		s.log.WithContext(ctx).Warnf("orphaned blob: video_id=%s path=%s", validated.VideoID, previous.Source.StoragePath)
	}

	s.log.WithContext(ctx).Infof("UpdateVideo: video_id=%s", updated.VideoID)
	return vo.NewVideoUpdated(updated), nil
}

// DeleteVideo 删除视频记录并尽力清理其媒体对象。
//
// 顺序：取记录 → 如为站内上传则尝试删除对象（失败仅记日志，不阻断）→
// 删除记录行。操作结果只取决于记录行是否删除成功。
func (s *VideoCommandService) DeleteVideo(ctx context.Context, input DeleteVideoInput) (*vo.VideoDeleted, error) {
	var fetched *po.Video
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		video, repoErr := s.repo.FindByID(txCtx, sess, input.VideoID)
		if repoErr != nil {
			return repoErr
		}
		fetched = video
		return nil
	})
	if err != nil {
		if kerrors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		s.log.WithContext(ctx).Errorf("delete video lookup failed: video_id=%s err=%v", input.VideoID, err)
		return nil, kerrors.InternalServer(ReasonCommandFailed, "failed to delete video").WithCause(fmt.Errorf("find video: %w", err))
	}

	blobRemoved := false
	if fetched.Source.Kind == po.SourceKindStored {
		if removeErr := s.blobs.Remove(ctx, fetched.Source.StoragePath); removeErr != nil {
			s.log.WithContext(ctx).Warnf("blob delete failed, continuing with record delete: video_id=%s path=%s err=%v",
				input.VideoID, fetched.Source.StoragePath, removeErr)
		} else {
			blobRemoved = true
		}
	}

	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		_, repoErr := s.repo.Delete(txCtx, sess, input.VideoID)
		return repoErr
	})
	if err != nil {
		if kerrors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		if kerrors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("delete video timeout: video_id=%s", input.VideoID)
			return nil, kerrors.GatewayTimeout(ReasonQueryTimeout, "delete timeout")
		}
		s.log.WithContext(ctx).Errorf("delete video failed: video_id=%s err=%v", input.VideoID, err)
		return nil, kerrors.InternalServer(ReasonCommandFailed, "failed to delete video").WithCause(fmt.Errorf("delete video: %w", err))
	}

	s.log.WithContext(ctx).Infof("DeleteVideo: video_id=%s blob_removed=%v", input.VideoID, blobRemoved)
	return &vo.VideoDeleted{
		VideoID:     input.VideoID,
		DeletedAt:   s.now().UTC(),
		BlobRemoved: blobRemoved,
	}, nil
}

func hasUpdateFields(input UpdateVideoInput) bool {
	return input.Title != nil ||
		input.Description != nil ||
		input.Transcript != nil ||
		input.ThumbnailURL != nil ||
		input.Tags != nil ||
		input.DurationSeconds != nil ||
		input.ExternalURL != nil ||
		input.Upload != nil ||
		input.CapturedAt != nil
}

// objectPath 生成带时间前缀与随机段的对象路径，避免同名文件冲突。
func (s *VideoCommandService) objectPath(filename string) string {
	base := path.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == "/" {
		base = "video.mp4"
	}
	return fmt.Sprintf("videos/%s/%s/%s", s.now().UTC().Format("20060102"), uuid.New(), base)
}

// decodeUploadPayload 将整体 base64 载荷还原为原始字节。
// 兼容带单个 data URI 前缀的自描述载荷。
func decodeUploadPayload(encoded string) ([]byte, error) {
	if idx := strings.Index(encoded, ";base64,"); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}
