package services

import (
	"path"
	"strings"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
)

// BlobURLResolver 提供对象路径到公开访问 URL 的映射。
// 约定：对已成功写入的路径，该调用同步、廉价且总是成功，可安全重复。
type BlobURLResolver interface {
	PublicURL(objectPath string) string
}

// PlaybackSource 表示解析后的播放来源。
type PlaybackSource struct {
	URL  string
	Kind po.SourceKind
}

// SourceResolver 把记录的三种存储形态统一解析为单个可播放 URL。
// 每次读取重新求值，不做跨请求缓存，重复解析无副作用。
type SourceResolver struct {
	blobs BlobURLResolver
	log   *log.Helper
}

// NewSourceResolver 构造播放来源解析器。
func NewSourceResolver(blobs BlobURLResolver, logger log.Logger) *SourceResolver {
	return &SourceResolver{
		blobs: blobs,
		log:   log.NewHelper(logger),
	}
}

// ResolvePlayback 解析一条记录的播放来源。
//
// 状态分支：
//   - external：platform != upload 且持有外链 → 原样返回 URL；
//   - stored：platform == upload 且持有对象路径 → 向 Blob Store 换取公开 URL；
//   - inline_pending：仅内存态，落库前的预览场景 → 构造 data URI；
//   - 其余 → ErrSourceUnavailable，调用方渲染占位内容而非错误页。
//
// 普通的"无来源"结果返回 ErrSourceUnavailable 哨兵，与传输类故障严格区分。
func (r *SourceResolver) ResolvePlayback(video *po.Video) (PlaybackSource, error) {
	if video == nil {
		return PlaybackSource{}, ErrSourceUnavailable
	}

	src := video.Source
	switch {
	case src.Kind == po.SourceKindExternal && src.ExternalURL != "" && video.Platform != po.PlatformUpload:
		return PlaybackSource{URL: src.ExternalURL, Kind: po.SourceKindExternal}, nil

	case src.Kind == po.SourceKindStored && src.StoragePath != "":
		return PlaybackSource{URL: r.blobs.PublicURL(src.StoragePath), Kind: po.SourceKindStored}, nil

	case src.Kind == po.SourceKindInlinePending && src.InlinePayload != "":
		return PlaybackSource{
			URL:  "data:" + MIMEForFilename(src.Filename) + ";base64," + src.InlinePayload,
			Kind: po.SourceKindInlinePending,
		}, nil

	default:
		r.log.Debugf("no playable source: video_id=%s kind=%s platform=%s", video.VideoID, src.Kind, video.Platform)
		return PlaybackSource{}, ErrSourceUnavailable
	}
}

// MIMEForFilename 按文件扩展名推断视频 MIME 类型。
// 未识别的扩展名回退到通用容器 video/mp4：播放可能降级，但摄取不在此处失败。
func MIMEForFilename(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".m4v":
		return "video/x-m4v"
	case ".3gp":
		return "video/3gpp"
	default:
		return "video/mp4"
	}
}
