// Package dto 提供控制器层的请求解析与响应构造工具。
// 单独的 dto 层可以隔离协议对象与业务用例之间的转换逻辑。
package dto

import (
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/vo"
	"github.com/bionicotaku/lingo-services-gallery/internal/services"

	"github.com/google/uuid"
)

// capturedAtLayout 是 captured_at 字段接受的日期格式。
const capturedAtLayout = "2006-01-02"

// UploadPayloadRequest 表示随请求携带的整体编码上传载荷。
type UploadPayloadRequest struct {
	Filename    string `json:"filename"`
	EncodedData string `json:"encoded_data"`
}

// CreateVideoRequest 表示创建视频的 HTTP 请求体。
type CreateVideoRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Transcript      string                `json:"transcript"`
	ThumbnailURL    string                `json:"thumbnail_url"`
	Tags            []string              `json:"tags"`
	DurationSeconds int32                 `json:"duration_seconds"`
	ExternalURL     string                `json:"external_url"`
	Upload          *UploadPayloadRequest `json:"upload"`
	CapturedAt      string                `json:"captured_at"`
}

// ToVideoInput 将创建请求映射为服务层输入。
func ToVideoInput(req *CreateVideoRequest) (services.VideoInput, error) {
	input := services.VideoInput{
		Title:           req.Title,
		Description:     req.Description,
		Transcript:      req.Transcript,
		ThumbnailURL:    req.ThumbnailURL,
		Tags:            req.Tags,
		DurationSeconds: req.DurationSeconds,
		ExternalURL:     req.ExternalURL,
	}
	if req.Upload != nil {
		input.Upload = &services.UploadPayload{
			Filename:    req.Upload.Filename,
			EncodedData: req.Upload.EncodedData,
		}
	}
	capturedAt, err := parseCapturedAt(req.CapturedAt)
	if err != nil {
		return services.VideoInput{}, err
	}
	input.CapturedAt = capturedAt
	return input, nil
}

// UpdateVideoRequest 表示部分更新的 HTTP 请求体，缺省字段不修改。
type UpdateVideoRequest struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	Transcript      *string               `json:"transcript"`
	ThumbnailURL    *string               `json:"thumbnail_url"`
	Tags            *[]string             `json:"tags"`
	DurationSeconds *int32                `json:"duration_seconds"`
	ExternalURL     *string               `json:"external_url"`
	Upload          *UploadPayloadRequest `json:"upload"`
	CapturedAt      *string               `json:"captured_at"`
}

// ToUpdateVideoInput 将更新请求映射为服务层输入。
func ToUpdateVideoInput(videoID uuid.UUID, req *UpdateVideoRequest) (services.UpdateVideoInput, error) {
	input := services.UpdateVideoInput{
		VideoID:         videoID,
		Title:           req.Title,
		Description:     req.Description,
		Transcript:      req.Transcript,
		ThumbnailURL:    req.ThumbnailURL,
		Tags:            req.Tags,
		DurationSeconds: req.DurationSeconds,
		ExternalURL:     req.ExternalURL,
	}
	if req.Upload != nil {
		input.Upload = &services.UploadPayload{
			Filename:    req.Upload.Filename,
			EncodedData: req.Upload.EncodedData,
		}
	}
	if req.CapturedAt != nil {
		capturedAt, err := parseCapturedAt(*req.CapturedAt)
		if err != nil {
			return services.UpdateVideoInput{}, err
		}
		input.CapturedAt = capturedAt
	}
	return input, nil
}

// ParseVideoID 解析路径参数中的 video_id。
func ParseVideoID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid video_id: %w", err)
	}
	return id, nil
}

func parseCapturedAt(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(capturedAtLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid captured_at (expect %s): %w", capturedAtLayout, err)
	}
	return &t, nil
}

// CreateVideoResponse 是创建操作的 HTTP 响应体。
type CreateVideoResponse struct {
	VideoID   string `json:"video_id"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
}

// NewCreateVideoResponse 将创建结果 VO 转换为响应体。
func NewCreateVideoResponse(created *vo.VideoCreated) *CreateVideoResponse {
	if created == nil {
		return &CreateVideoResponse{}
	}
	return &CreateVideoResponse{
		VideoID:   created.VideoID.String(),
		Platform:  created.Platform,
		CreatedAt: formatTime(created.CreatedAt),
	}
}

// UpdateVideoResponse 是更新操作的 HTTP 响应体。
type UpdateVideoResponse struct {
	VideoID   string `json:"video_id"`
	Platform  string `json:"platform"`
	UpdatedAt string `json:"updated_at"`
}

// NewUpdateVideoResponse 将更新结果 VO 转换为响应体。
func NewUpdateVideoResponse(updated *vo.VideoUpdated) *UpdateVideoResponse {
	if updated == nil {
		return &UpdateVideoResponse{}
	}
	return &UpdateVideoResponse{
		VideoID:   updated.VideoID.String(),
		Platform:  updated.Platform,
		UpdatedAt: formatTime(updated.UpdatedAt),
	}
}

// DeleteVideoResponse 是删除操作的 HTTP 响应体。
type DeleteVideoResponse struct {
	VideoID     string `json:"video_id"`
	DeletedAt   string `json:"deleted_at"`
	BlobRemoved bool   `json:"blob_removed"`
}

// NewDeleteVideoResponse 将删除结果 VO 转换为响应体。
func NewDeleteVideoResponse(deleted *vo.VideoDeleted) *DeleteVideoResponse {
	if deleted == nil {
		return &DeleteVideoResponse{}
	}
	return &DeleteVideoResponse{
		VideoID:     deleted.VideoID.String(),
		DeletedAt:   formatTime(deleted.DeletedAt),
		BlobRemoved: deleted.BlobRemoved,
	}
}

// GetVideoResponse 是单条查询的 HTTP 响应体。
type GetVideoResponse struct {
	Video *vo.VideoDetail `json:"video"`
}

// ListVideosResponse 是列表查询的 HTTP 响应体。
type ListVideosResponse struct {
	Videos []*vo.VideoDetail `json:"videos"`
	Total  int               `json:"total"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
