package services

import (
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// 错误 Reason 常量，随 kratos errors 返回给调用方。
const (
	// ReasonValidationFailed 表示提交的元数据未通过校验，字段级信息见 Metadata。
	ReasonValidationFailed = "VALIDATION_FAILED"
	// ReasonVideoIDInvalid 表示 video_id 不是合法 UUID。
	ReasonVideoIDInvalid = "VIDEO_ID_INVALID"
	// ReasonVideoNotFound 表示目标视频不存在。
	ReasonVideoNotFound = "VIDEO_NOT_FOUND"
	// ReasonVideoUpdateInvalid 表示更新请求没有携带任何可更新字段。
	ReasonVideoUpdateInvalid = "VIDEO_UPDATE_INVALID"
	// ReasonStorageUnavailable 表示 Blob Store 或 Record Store 暂时不可达，可重试。
	ReasonStorageUnavailable = "STORAGE_UNAVAILABLE"
	// ReasonQueryTimeout 表示操作超时。
	ReasonQueryTimeout = "QUERY_TIMEOUT"
	// ReasonCommandFailed 表示写路径出现未预期的内部错误。
	ReasonCommandFailed = "COMMAND_FAILED"
)

// ErrVideoNotFound 是当视频未找到时返回的哨兵错误。
var ErrVideoNotFound = kerrors.NotFound(ReasonVideoNotFound, "video not found")

// ErrSourceUnavailable 表示记录存在但没有可播放的媒体来源。
// 这是普通的否定结果而非故障：调用方据此渲染占位内容，不得当作传输错误重试。
var ErrSourceUnavailable = errors.New("no video source available")
