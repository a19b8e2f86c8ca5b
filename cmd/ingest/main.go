// Package main 提供 ingest 命令行工具：把本地视频文件分块编码后提交给
// gallery 服务，或直接登记一条外链视频。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-gallery/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-gallery/internal/upload"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

func main() {
	var (
		addr        = flag.String("addr", "http://127.0.0.1:8000", "gallery service endpoint")
		file        = flag.String("file", "", "local video file to upload")
		externalURL = flag.String("url", "", "external video url (YouTube/Vimeo/MP4); overrides -file")
		title       = flag.String("title", "", "video title")
		description = flag.String("description", "", "video description")
		transcript  = flag.String("transcript", "", "video transcript")
		thumbnail   = flag.String("thumbnail", "", "thumbnail image url")
		tags        = flag.String("tags", "", "comma separated tags")
		duration    = flag.Int("duration", 0, "duration in seconds")
		capturedAt  = flag.String("captured-at", "", "capture date (YYYY-MM-DD)")
		chunkSize   = flag.Int("chunk-size", upload.DefaultChunkSize, "encoder chunk size in bytes")
		timeout     = flag.Duration("timeout", 2*time.Minute, "request timeout")
	)
	flag.Parse()

	if *file == "" && *externalURL == "" {
		fmt.Fprintln(os.Stderr, "either -file or -url is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	req := &dto.CreateVideoRequest{
		Title:           *title,
		Description:     *description,
		Transcript:      *transcript,
		ThumbnailURL:    *thumbnail,
		Tags:            splitTags(*tags),
		DurationSeconds: int32(*duration),
		ExternalURL:     *externalURL,
		CapturedAt:      *capturedAt,
	}

	if *externalURL == "" {
		payload, err := encodeFile(ctx, *file, *chunkSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode %s: %v\n", *file, err)
			os.Exit(1)
		}
		req.Upload = payload
	}

	client, err := khttp.NewClient(ctx, khttp.WithEndpoint(*addr), khttp.WithTimeout(*timeout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer client.Close()

	var resp dto.CreateVideoResponse
	if err := client.Invoke(ctx, "POST", "/v1/videos", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "create video: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created video %s (platform=%s, created_at=%s)\n", resp.VideoID, resp.Platform, resp.CreatedAt)
}

// encodeFile 分块编码本地文件，并在 stderr 上打印进度。
func encodeFile(ctx context.Context, path string, chunkSize int) (*dto.UploadPayloadRequest, error) {
	enc := upload.NewEncoder(
		upload.WithChunkSize(chunkSize),
		upload.WithProgress(func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\rencoding... %3.0f%%", fraction*100)
			if fraction >= 1 {
				fmt.Fprintln(os.Stderr)
			}
		}),
	)

	result, err := enc.EncodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return &dto.UploadPayloadRequest{
		Filename:    result.Filename,
		EncodedData: result.EncodedData,
	}, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
