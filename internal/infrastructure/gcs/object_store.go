// Package gcs 提供与 Google Cloud Storage 交互的基础设施封装。
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"

	configloader "github.com/bionicotaku/lingo-services-gallery/internal/infrastructure/configloader"
)

// publicURLBase 是公开可读 bucket 的标准访问前缀。
const publicURLBase = "https://storage.googleapis.com"

// ObjectStore 封装视频媒体对象的写入、删除与公开 URL 拼装。
// 对象内容对本层是不透明字节，语义由上层决定。
type ObjectStore struct {
	client *storage.Client
	bucket string
	log    *log.Helper
}

// Option 定义可选配置。
type Option func(*ObjectStore)

// WithClient 允许直接注入 storage 客户端（测试友好）。
func WithClient(client *storage.Client) Option {
	return func(s *ObjectStore) {
		if client != nil {
			s.client = client
		}
	}
}

// NewObjectStore 创建 ObjectStore；未注入客户端时使用默认凭据初始化。
func NewObjectStore(ctx context.Context, bucket string, logger log.Logger, opts ...Option) (*ObjectStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs object store: bucket is required")
	}

	store := &ObjectStore{
		bucket: bucket,
		log:    log.NewHelper(logger),
	}
	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		store.client = client
	}
	return store, nil
}

// Put 将完整对象写入 bucket 指定路径，写入是原子的：要么整体可见要么不可见。
func (s *ObjectStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if objectPath == "" {
		return errors.New("object path is required")
	}

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", objectPath, err)
	}

	s.log.WithContext(ctx).Debugf("object stored: bucket=%s path=%s bytes=%d", s.bucket, objectPath, len(data))
	return nil
}

// Remove 删除指定对象；对象不存在视为成功（幂等删除）。
func (s *ObjectStore) Remove(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return errors.New("object path is required")
	}

	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("delete object %s: %w", objectPath, err)
	}
	return nil
}

// PublicURL 拼装对象的公开访问 URL。纯字符串运算，不访问网络。
func (s *ObjectStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", publicURLBase, s.bucket, strings.TrimPrefix(objectPath, "/"))
}

// Close 释放底层客户端连接。
func (s *ObjectStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// ProvideObjectStore 供 Wire 注入使用，返回 cleanup 关闭客户端。
func ProvideObjectStore(ctx context.Context, cfg configloader.GCSConfig, logger log.Logger) (*ObjectStore, func(), error) {
	store, err := NewObjectStore(ctx, cfg.Bucket, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if cerr := store.Close(); cerr != nil {
			log.NewHelper(logger).Warnf("close gcs client failed: %v", cerr)
		}
	}
	return store, cleanup, nil
}
