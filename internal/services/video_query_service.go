package services

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"
	"github.com/bionicotaku/lingo-services-gallery/internal/models/vo"
	"github.com/bionicotaku/lingo-services-gallery/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// VideoQueryRepo 定义读路径所需的访问接口。
type VideoQueryRepo interface {
	FindByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	List(ctx context.Context, sess txmanager.Session) ([]*po.Video, error)
}

// VideoQueryService 封装视频只读用例，读取时现场解析播放来源。
type VideoQueryService struct {
	repo      VideoQueryRepo
	resolver  *SourceResolver
	txManager txmanager.Manager
	log       *log.Helper
}

// NewVideoQueryService 构造视频查询服务。
func NewVideoQueryService(repo VideoQueryRepo, resolver *SourceResolver, tx txmanager.Manager, logger log.Logger) *VideoQueryService {
	return &VideoQueryService{
		repo:      repo,
		resolver:  resolver,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// GetVideo 查询单条视频详情。
// 无可播放来源属于普通结果：detail.PlaybackAvailable = false，不返回错误。
func (s *VideoQueryService) GetVideo(ctx context.Context, videoID uuid.UUID) (*vo.VideoDetail, error) {
	var video *po.Video
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var repoErr error
		video, repoErr = s.repo.FindByID(txCtx, sess, videoID)
		return repoErr
	})
	if err != nil {
		if kerrors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		if kerrors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("get video timeout: video_id=%s", videoID)
			return nil, kerrors.GatewayTimeout(ReasonQueryTimeout, "query timeout")
		}
		s.log.WithContext(ctx).Errorf("get video failed: video_id=%s err=%v", videoID, err)
		return nil, kerrors.InternalServer(ReasonCommandFailed, "failed to query video").WithCause(fmt.Errorf("find video by id: %w", err))
	}

	s.log.WithContext(ctx).Debugf("GetVideo: video_id=%s platform=%s", video.VideoID, video.Platform)
	return s.toDetail(video), nil
}

// ListVideos 查询全部视频。
// Record Store 对本层可能是最终一致的：刚创建的记录缺席不是错误。
func (s *VideoQueryService) ListVideos(ctx context.Context) ([]*vo.VideoDetail, error) {
	var videos []*po.Video
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var repoErr error
		videos, repoErr = s.repo.List(txCtx, sess)
		return repoErr
	})
	if err != nil {
		if kerrors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("list videos timeout")
			return nil, kerrors.GatewayTimeout(ReasonQueryTimeout, "query timeout")
		}
		s.log.WithContext(ctx).Errorf("list videos failed: err=%v", err)
		return nil, kerrors.InternalServer(ReasonCommandFailed, "failed to list videos").WithCause(fmt.Errorf("list videos: %w", err))
	}

	details := make([]*vo.VideoDetail, 0, len(videos))
	for _, video := range videos {
		details = append(details, s.toDetail(video))
	}
	return details, nil
}

// toDetail 把实体转换为详情视图，并解析播放来源。
func (s *VideoQueryService) toDetail(video *po.Video) *vo.VideoDetail {
	playback, err := s.resolver.ResolvePlayback(video)
	if err != nil {
		// ErrSourceUnavailable：渲染占位，而非错误。
		return vo.NewVideoDetail(video, "", false)
	}
	return vo.NewVideoDetail(video, playback.URL, true)
}
