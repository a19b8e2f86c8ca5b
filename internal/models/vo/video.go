// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 DTO 层转换为 API 响应，隔离内部数据结构。
package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"

	"github.com/google/uuid"
)

// VideoDetail 封装视频详情视图，附带解析后的播放地址。
// PlaybackURL 在每次读取时重新解析，不做跨请求缓存。
type VideoDetail struct {
	VideoID         uuid.UUID `json:"video_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Transcript      string    `json:"transcript"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Platform        string    `json:"platform"`
	Tags            []string  `json:"tags"`
	DurationSeconds int32     `json:"duration_seconds"`

	// 播放相关：PlaybackAvailable 为 false 时前端渲染占位图，
	// 此时 PlaybackURL 为空字符串而不是错误。
	PlaybackURL       string `json:"playback_url"`
	PlaybackAvailable bool   `json:"playback_available"`

	CapturedAt *time.Time `json:"captured_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewVideoDetail 从领域实体构造详情 VO。播放地址由调用方解析后填入。
func NewVideoDetail(video *po.Video, playbackURL string, available bool) *VideoDetail {
	if video == nil {
		return nil
	}
	return &VideoDetail{
		VideoID:         video.VideoID,
		Title:           video.Title,
		Description:     video.Description,
		Transcript:      video.Transcript,
		ThumbnailURL:    video.ThumbnailURL,
		Platform:        string(video.Platform),
		Tags:            append([]string(nil), video.Tags...), // 防御性拷贝
		DurationSeconds: video.DurationSeconds,

		PlaybackURL:       playbackURL,
		PlaybackAvailable: available,

		CapturedAt: video.CapturedAt,
		CreatedAt:  video.CreatedAt,
		UpdatedAt:  video.UpdatedAt,
	}
}

// VideoCreated 描述创建操作的结果视图。
type VideoCreated struct {
	VideoID   uuid.UUID `json:"video_id"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

// NewVideoCreated 从创建后的实体构造结果视图。
func NewVideoCreated(video *po.Video) *VideoCreated {
	if video == nil {
		return nil
	}
	return &VideoCreated{
		VideoID:   video.VideoID,
		Platform:  string(video.Platform),
		CreatedAt: video.CreatedAt,
	}
}

// VideoUpdated 描述更新操作的结果视图。
type VideoUpdated struct {
	VideoID   uuid.UUID `json:"video_id"`
	Platform  string    `json:"platform"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVideoUpdated 从更新后的实体构造结果视图。
func NewVideoUpdated(video *po.Video) *VideoUpdated {
	if video == nil {
		return nil
	}
	return &VideoUpdated{
		VideoID:   video.VideoID,
		Platform:  string(video.Platform),
		UpdatedAt: video.UpdatedAt,
	}
}

// VideoDeleted 描述删除操作的结果视图。
// BlobRemoved 仅作观测用途：媒体对象清理失败不影响删除结果本身。
type VideoDeleted struct {
	VideoID     uuid.UUID `json:"video_id"`
	DeletedAt   time.Time `json:"deleted_at"`
	BlobRemoved bool      `json:"blob_removed"`
}
