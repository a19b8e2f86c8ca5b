// Package repositories 提供数据访问层实现，负责与持久化存储交互。
// 该层实现 Service 层定义的 Repository 接口，隔离底层存储细节。
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVideoNotFound 在目标行不存在时返回，由 Service 层映射为 NotFound。
var ErrVideoNotFound = errors.New("video not found")

// CreateVideoInput 表示插入一行视频记录所需的全部字段。
// 不变式由 Service 层保证：SourceKind 只会是 external 或 stored，
// 且对应载荷指针恰好其一非空。
type CreateVideoInput struct {
	VideoID         uuid.UUID
	Title           string
	Description     string
	Transcript      string
	ThumbnailURL    string
	Platform        po.Platform
	Tags            []string
	DurationSeconds int32
	SourceKind      po.SourceKind
	ExternalURL     *string
	StoragePath     *string
	CapturedAt      *time.Time
}

// UpdateVideoInput 表示部分更新，nil 字段保持原值。
// SourceKind 非空时媒体来源三列整体替换（last write wins）。
type UpdateVideoInput struct {
	VideoID         uuid.UUID
	Title           *string
	Description     *string
	Transcript      *string
	ThumbnailURL    *string
	Platform        *po.Platform
	Tags            *[]string
	DurationSeconds *int32
	SourceKind      *po.SourceKind
	ExternalURL     *string
	StoragePath     *string
	CapturedAt      *time.Time
}

// querier 抽象连接池与事务共有的查询入口。
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VideoRepository 基于 pgx 实现 services.VideoRepo / services.VideoQueryRepo。
type VideoRepository struct {
	db *pgxpool.Pool
}

// NewVideoRepository 构造 VideoRepository 实例，连接池由 Wire 注入。
func NewVideoRepository(db *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{db: db}
}

// q 在事务会话存在时切换到事务绑定的查询入口。
func (r *VideoRepository) q(sess txmanager.Session) querier {
	if sess != nil {
		return sess.Tx()
	}
	return r.db
}

const videoColumns = `video_id, title, description, transcript, thumbnail_url, platform, tags,
        duration_seconds, source_kind, external_url, storage_path, captured_at, created_at, updated_at`

const insertVideoSQL = `
INSERT INTO gallery.videos (
        video_id, title, description, transcript, thumbnail_url, platform, tags,
        duration_seconds, source_kind, external_url, storage_path, captured_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + videoColumns

// Create 插入一行视频记录并返回落库后的实体。
func (r *VideoRepository) Create(ctx context.Context, sess txmanager.Session, input CreateVideoInput) (*po.Video, error) {
	row := r.q(sess).QueryRow(ctx, insertVideoSQL,
		input.VideoID,
		input.Title,
		input.Description,
		input.Transcript,
		input.ThumbnailURL,
		string(input.Platform),
		input.Tags,
		input.DurationSeconds,
		string(input.SourceKind),
		input.ExternalURL,
		input.StoragePath,
		input.CapturedAt,
	)
	video, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

const updateVideoSQL = `
UPDATE gallery.videos SET
        title            = COALESCE($2::text, title),
        description      = COALESCE($3::text, description),
        transcript       = COALESCE($4::text, transcript),
        thumbnail_url    = COALESCE($5::text, thumbnail_url),
        platform         = COALESCE($6::text, platform),
        tags             = COALESCE($7::text[], tags),
        duration_seconds = COALESCE($8::int, duration_seconds),
        source_kind      = CASE WHEN $9::text IS NULL THEN source_kind  ELSE $9::text  END,
        external_url     = CASE WHEN $9::text IS NULL THEN external_url ELSE $10::text END,
        storage_path     = CASE WHEN $9::text IS NULL THEN storage_path ELSE $11::text END,
        captured_at      = COALESCE($12::date, captured_at),
        updated_at       = now()
WHERE video_id = $1
RETURNING ` + videoColumns

// Update 对指定行做部分更新；行不存在时返回 ErrVideoNotFound。
func (r *VideoRepository) Update(ctx context.Context, sess txmanager.Session, input UpdateVideoInput) (*po.Video, error) {
	var tags any
	if input.Tags != nil {
		tags = *input.Tags
	}
	row := r.q(sess).QueryRow(ctx, updateVideoSQL,
		input.VideoID,
		input.Title,
		input.Description,
		input.Transcript,
		input.ThumbnailURL,
		platformPtr(input.Platform),
		tags,
		input.DurationSeconds,
		sourceKindPtr(input.SourceKind),
		input.ExternalURL,
		input.StoragePath,
		input.CapturedAt,
	)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return video, nil
}

const deleteVideoSQL = `
DELETE FROM gallery.videos
WHERE video_id = $1
RETURNING ` + videoColumns

// Delete 删除指定行并返回删除前的实体；行不存在时返回 ErrVideoNotFound。
func (r *VideoRepository) Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	row := r.q(sess).QueryRow(ctx, deleteVideoSQL, videoID)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return video, nil
}

const findVideoSQL = `
SELECT ` + videoColumns + `
FROM gallery.videos
WHERE video_id = $1`

// FindByID 按主键查询；行不存在时返回 ErrVideoNotFound。
func (r *VideoRepository) FindByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	row := r.q(sess).QueryRow(ctx, findVideoSQL, videoID)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return video, nil
}

const listVideosSQL = `
SELECT ` + videoColumns + `
FROM gallery.videos
ORDER BY created_at DESC, video_id`

// List 返回全部视频，按创建时间倒序。
func (r *VideoRepository) List(ctx context.Context, sess txmanager.Session) ([]*po.Video, error) {
	rows, err := r.q(sess).Query(ctx, listVideosSQL)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*po.Video
	for rows.Next() {
		video, scanErr := scanVideo(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan video row: %w", scanErr)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// scanVideo 按 videoColumns 顺序扫描一行并组装媒体来源联合类型。
func scanVideo(row pgx.Row) (*po.Video, error) {
	var (
		video       po.Video
		platform    string
		sourceKind  string
		externalURL *string
		storagePath *string
	)
	err := row.Scan(
		&video.VideoID,
		&video.Title,
		&video.Description,
		&video.Transcript,
		&video.ThumbnailURL,
		&platform,
		&video.Tags,
		&video.DurationSeconds,
		&sourceKind,
		&externalURL,
		&storagePath,
		&video.CapturedAt,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Platform = po.Platform(platform)
	switch po.SourceKind(sourceKind) {
	case po.SourceKindExternal:
		if externalURL != nil {
			video.Source = po.ExternalSource(*externalURL)
		}
	case po.SourceKindStored:
		if storagePath != nil {
			video.Source = po.StoredSource(*storagePath)
		}
	}
	return &video, nil
}

func platformPtr(p *po.Platform) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func sourceKindPtr(k *po.SourceKind) *string {
	if k == nil {
		return nil
	}
	s := string(*k)
	return &s
}
