package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

// UploadPayload 表示一次分块编码完成后的上传载荷。
// EncodedData 为整体 base64 字符串（允许携带单个 data URI 前缀）。
type UploadPayload struct {
	Filename    string
	EncodedData string
}

// VideoInput 表示创建视频的服务层输入。
// ExternalURL 与 Upload 二选一；两者同时出现时 URL 优先（见 ValidateVideoInput）。
type VideoInput struct {
	Title           string
	Description     string
	Transcript      string
	ThumbnailURL    string
	Platform        po.Platform
	Tags            []string
	DurationSeconds int32
	ExternalURL     string
	Upload          *UploadPayload
	CapturedAt      *time.Time
}

// UpdateVideoInput 表示更新视频时的可选字段，nil 表示不修改。
type UpdateVideoInput struct {
	VideoID         uuid.UUID
	Title           *string
	Description     *string
	Transcript      *string
	ThumbnailURL    *string
	Tags            *[]string
	DurationSeconds *int32
	ExternalURL     *string
	Upload          *UploadPayload
	CapturedAt      *time.Time
}

// DeleteVideoInput 表示删除视频时的输入。
type DeleteVideoInput struct {
	VideoID uuid.UUID
}

// 识别的播放器 URL 模式与缩略图扩展名模式。
var (
	thumbnailPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)(\?\S*)?$`)
	youtubePattern   = regexp.MustCompile(`^https?://(www\.)?(youtube\.com/(watch\?v=|shorts/)[\w-]+|youtu\.be/[\w-]+)`)
	vimeoPattern     = regexp.MustCompile(`^https?://(www\.)?vimeo\.com/\d+`)
	mp4Pattern       = regexp.MustCompile(`(?i)^https?://\S+\.mp4(\?\S*)?$`)
)

type fieldViolation struct {
	Field   string
	Message string
}

func newValidationError(violations []fieldViolation) error {
	md := make(map[string]string, len(violations))
	for _, v := range violations {
		if _, ok := md[v.Field]; !ok {
			md[v.Field] = v.Message
		}
	}
	return kerrors.BadRequest(ReasonValidationFailed, "invalid video submission").WithMetadata(md)
}

// ValidateVideoInput 校验创建提交并返回规范化后的输入。
//
// 校验按以下顺序收集全部违规项（一次性返回，便于表单逐字段提示）：
//  1. title/description/transcript 非空；
//  2. thumbnail 匹配图片扩展名模式（.jpg/.jpeg/.png/.webp，可带查询串）；
//  3. external_url 与上传载荷恰好其一：两者都给时 URL 优先、载荷被忽略，
//     两者都缺时报 media_source 缺失；
//  4. external_url 必须命中 YouTube/Vimeo/直链 MP4 模式之一，platform 由命中
//     的模式归一化；上传载荷则归一化为 upload；
//  5. duration_seconds 非负。
//
// 纯函数：校验失败不触碰任何存储。
func ValidateVideoInput(input VideoInput) (VideoInput, error) {
	var violations []fieldViolation

	if strings.TrimSpace(input.Title) == "" {
		violations = append(violations, fieldViolation{"title", "title is required"})
	}
	if strings.TrimSpace(input.Description) == "" {
		violations = append(violations, fieldViolation{"description", "description is required"})
	}
	if strings.TrimSpace(input.Transcript) == "" {
		violations = append(violations, fieldViolation{"transcript", "transcript is required"})
	}

	if !thumbnailPattern.MatchString(strings.TrimSpace(input.ThumbnailURL)) {
		violations = append(violations, fieldViolation{"thumbnail", "thumbnail must be a .jpg/.jpeg/.png/.webp URI"})
	}

	url := strings.TrimSpace(input.ExternalURL)
	hasUpload := input.Upload != nil && input.Upload.EncodedData != ""

	switch {
	case url != "":
		// URL 优先：同时携带的上传载荷被忽略。
		input.ExternalURL = url
		input.Upload = nil
		platform, ok := detectPlatform(url)
		if !ok {
			violations = append(violations, fieldViolation{"external_url", "url must match a YouTube, Vimeo or direct MP4 pattern"})
		} else {
			input.Platform = platform
		}
	case hasUpload:
		input.Platform = po.PlatformUpload
	default:
		violations = append(violations, fieldViolation{"media_source", "exactly one of external_url or upload payload is required"})
	}

	if input.DurationSeconds < 0 {
		violations = append(violations, fieldViolation{"duration_seconds", "duration_seconds must be non-negative"})
	}

	if len(violations) > 0 {
		return VideoInput{}, newValidationError(violations)
	}
	return input, nil
}

// ValidateVideoUpdate 校验部分更新输入，只检查携带的字段。
// 媒体来源的二选一规则与创建一致：URL 与载荷同时给出时 URL 优先。
func ValidateVideoUpdate(input UpdateVideoInput) (UpdateVideoInput, error) {
	var violations []fieldViolation

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		violations = append(violations, fieldViolation{"title", "title must not be empty"})
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		violations = append(violations, fieldViolation{"description", "description must not be empty"})
	}
	if input.Transcript != nil && strings.TrimSpace(*input.Transcript) == "" {
		violations = append(violations, fieldViolation{"transcript", "transcript must not be empty"})
	}
	if input.ThumbnailURL != nil && !thumbnailPattern.MatchString(strings.TrimSpace(*input.ThumbnailURL)) {
		violations = append(violations, fieldViolation{"thumbnail", "thumbnail must be a .jpg/.jpeg/.png/.webp URI"})
	}

	if input.ExternalURL != nil {
		url := strings.TrimSpace(*input.ExternalURL)
		input.ExternalURL = &url
		input.Upload = nil
		if _, ok := detectPlatform(url); !ok {
			violations = append(violations, fieldViolation{"external_url", "url must match a YouTube, Vimeo or direct MP4 pattern"})
		}
	} else if input.Upload != nil && input.Upload.EncodedData == "" {
		violations = append(violations, fieldViolation{"upload", "upload payload must not be empty"})
	}

	if input.DurationSeconds != nil && *input.DurationSeconds < 0 {
		violations = append(violations, fieldViolation{"duration_seconds", "duration_seconds must be non-negative"})
	}

	if len(violations) > 0 {
		return UpdateVideoInput{}, newValidationError(violations)
	}
	return input, nil
}

// detectPlatform 按识别的播放器模式归类外链 URL。
func detectPlatform(url string) (po.Platform, bool) {
	switch {
	case youtubePattern.MatchString(url):
		return po.PlatformYouTube, true
	case vimeoPattern.MatchString(url):
		return po.PlatformVimeo, true
	case mp4Pattern.MatchString(url):
		return po.PlatformMP4, true
	default:
		return "", false
	}
}
