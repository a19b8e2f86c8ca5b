// Package upload 实现客户端侧的分块 Base64 编码。
// 大文件按固定块大小读取，流式写入同一个编码器，
// 产出单一帧格式的编码串（不是逐块编码后拼接）。
package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultChunkSize 是分块读取的默认块大小（2 MiB）。
// 块大小只影响内存占用与进度粒度，不影响编码结果。
const DefaultChunkSize = 2 << 20

// Result 表示一次编码完成后的产物。
type Result struct {
	Filename    string
	EncodedData string
}

// ProgressFunc 在每个块编码完成后收到累计进度，取值 (0, 1]。
type ProgressFunc func(fraction float64)

// Encoder 将视频文件分块读取并编码为整体 base64 字符串。
type Encoder struct {
	chunkSize int
	progress  ProgressFunc
}

// Option 定义可选配置。
type Option func(*Encoder)

// WithChunkSize 覆盖块大小，非正值被忽略。
func WithChunkSize(size int) Option {
	return func(e *Encoder) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithProgress 注册进度回调。
func WithProgress(fn ProgressFunc) Option {
	return func(e *Encoder) {
		e.progress = fn
	}
}

// NewEncoder 构造 Encoder。
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncodeFile 打开文件并编码全部内容。
func (e *Encoder) EncodeFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	return e.Encode(ctx, f, info.Size(), info.Name())
}

// Encode 从 r 读取恰好 size 字节并编码。
//
// 读取按块推进，每块写入同一个 base64 流编码器，块边界不会出现
// 独立的 padding；最终产物与一次性编码整个文件逐字节一致。
//
// 进度回调严格单调递增，最后一次恰好为 1.0（空文件也会收到一次 1.0）。
// ctx 取消时立即返回 ctx.Err()，已编码的部分被丢弃。
func (e *Encoder) Encode(ctx context.Context, r io.Reader, size int64, filename string) (*Result, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}

	var sb strings.Builder
	if size > 0 {
		// 预估编码后长度，避免 builder 反复扩容
		sb.Grow(int(base64.StdEncoding.EncodedLen(int(size))))
	}
	enc := base64.NewEncoder(base64.StdEncoding, &sb)

	buf := make([]byte, e.chunkSize)
	var done int64
	for done < size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		want := int64(len(buf))
		if remaining := size - done; remaining < want {
			want = remaining
		}
		n, err := io.ReadFull(r, buf[:want])
		if err != nil {
			return nil, fmt.Errorf("read chunk at offset %d: %w", done, err)
		}
		if _, err := enc.Write(buf[:n]); err != nil {
			return nil, fmt.Errorf("encode chunk at offset %d: %w", done, err)
		}

		done += int64(n)
		e.report(float64(done) / float64(size))
	}

	// Close 冲刷尾部字节并写入 padding
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize encoding: %w", err)
	}

	if size == 0 {
		e.report(1.0)
	}

	return &Result{
		Filename:    filename,
		EncodedData: sb.String(),
	}, nil
}

func (e *Encoder) report(fraction float64) {
	if e.progress == nil {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	e.progress(fraction)
}
