// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// Platform 表示视频媒体来源的解释方式。
type Platform string

// 平台常量定义
const (
	PlatformYouTube Platform = "youtube" // YouTube 外链（watch/shorts/youtu.be）
	PlatformVimeo   Platform = "vimeo"   // Vimeo 外链
	PlatformMP4     Platform = "mp4"     // 直链 MP4 文件
	PlatformUpload  Platform = "upload"  // 站内上传，媒体存于 Blob Store
)

// SourceKind 表示媒体来源的存储形态。
// 三种形态互斥：外链 URL、已落盘的对象路径、尚未落盘的内联 base64 载荷。
type SourceKind string

const (
	// SourceKindExternal 表示来源为外部播放器可直接消费的 URL。
	SourceKindExternal SourceKind = "external"
	// SourceKindStored 表示来源为 Blob Store 中的对象路径。
	SourceKindStored SourceKind = "stored"
	// SourceKindInlinePending 表示上传完成但尚未写入 Blob Store 的内存态载荷。
	// 该形态只存在于请求处理过程中，绝不落库。
	SourceKindInlinePending SourceKind = "inline_pending"
)

// MediaSource 是媒体来源的带标签联合类型。
// Kind 决定哪个载荷字段有效，消费方按 Kind 穷举分支，
// 从类型上消除"三个可空字段同时为空/同时非空"的歧义。
type MediaSource struct {
	Kind          SourceKind
	ExternalURL   string // Kind == external 时有效
	StoragePath   string // Kind == stored 时有效
	InlinePayload string // Kind == inline_pending 时有效（base64）
	Filename      string // Kind == inline_pending 时有效，原始文件名
}

// ExternalSource 构造外链形态的媒体来源。
func ExternalSource(url string) MediaSource {
	return MediaSource{Kind: SourceKindExternal, ExternalURL: url}
}

// StoredSource 构造对象路径形态的媒体来源。
func StoredSource(path string) MediaSource {
	return MediaSource{Kind: SourceKindStored, StoragePath: path}
}

// InlineSource 构造内联载荷形态的媒体来源（仅限请求内传递）。
func InlineSource(payload, filename string) MediaSource {
	return MediaSource{Kind: SourceKindInlinePending, InlinePayload: payload, Filename: filename}
}

// IsZero 判断媒体来源是否未设置。
func (m MediaSource) IsZero() bool {
	return m.Kind == ""
}

// Video 表示 gallery.videos 表的数据库实体。
// 不变式：落库记录的 Source.Kind 只会是 external 或 stored；
// Platform == upload 当且仅当 Source.Kind == stored。
type Video struct {
	VideoID         uuid.UUID   `db:"video_id"`         // 主键（UUID v4）
	Title           string      `db:"title"`            // 标题（必填）
	Description     string      `db:"description"`      // 描述（必填）
	Transcript      string      `db:"transcript"`       // 文字稿（必填）
	ThumbnailURL    string      `db:"thumbnail_url"`    // 缩略图 URI（图片扩展名约束）
	Platform        Platform    `db:"platform"`         // 媒体来源平台
	Tags            []string    `db:"tags"`             // 标签（PostgreSQL text[]）
	DurationSeconds int32       `db:"duration_seconds"` // 时长（秒，非负）
	Source          MediaSource `db:"-"`                // 由 source_kind/external_url/storage_path 三列映射
	CapturedAt      *time.Time  `db:"captured_at"`      // 拍摄日期（可选，仅日期语义）
	CreatedAt       time.Time   `db:"created_at"`       // 记录创建时间
	UpdatedAt       time.Time   `db:"updated_at"`       // 最近更新时间
}
