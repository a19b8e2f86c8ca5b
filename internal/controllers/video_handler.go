package controllers

import (
	"context"
	stdhttp "net/http"

	"github.com/bionicotaku/lingo-services-gallery/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-gallery/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 操作名用于日志与追踪标签，保持与路由一一对应。
const (
	OperationVideoCreate = "/gallery.v1.VideoService/CreateVideo"
	OperationVideoUpdate = "/gallery.v1.VideoService/UpdateVideo"
	OperationVideoDelete = "/gallery.v1.VideoService/DeleteVideo"
	OperationVideoGet    = "/gallery.v1.VideoService/GetVideo"
	OperationVideoList   = "/gallery.v1.VideoService/ListVideos"
)

// VideoHandler 负责处理视频查询和命令相关的 HTTP 请求。
type VideoHandler struct {
	*BaseHandler

	commands *services.VideoCommandService
	queries  *services.VideoQueryService
}

// NewVideoHandler 构造视频 Handler。
func NewVideoHandler(base *BaseHandler, commands *services.VideoCommandService, queries *services.VideoQueryService) *VideoHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &VideoHandler{BaseHandler: base, commands: commands, queries: queries}
}

// RegisterRoutes 在 HTTP 服务器上注册视频相关路由。
func (h *VideoHandler) RegisterRoutes(srv *khttp.Server) {
	r := srv.Route("/v1")
	r.POST("/videos", h.createVideo)
	r.GET("/videos", h.listVideos)
	r.GET("/videos/{video_id}", h.getVideo)
	r.PATCH("/videos/{video_id}", h.updateVideo)
	r.DELETE("/videos/{video_id}", h.deleteVideo)
}

func (h *VideoHandler) createVideo(ctx khttp.Context) error {
	var req dto.CreateVideoRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	khttp.SetOperation(ctx, OperationVideoCreate)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		input, err := dto.ToVideoInput(&req)
		if err != nil {
			return nil, kerrors.BadRequest(services.ReasonValidationFailed, err.Error())
		}

		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		timeoutCtx = InjectHandlerMetadata(timeoutCtx, h.ExtractMetadata(c))

		created, err := h.commands.CreateVideo(timeoutCtx, input)
		if err != nil {
			return nil, err
		}
		return dto.NewCreateVideoResponse(created), nil
	})

	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusCreated, out)
}

func (h *VideoHandler) updateVideo(ctx khttp.Context) error {
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonVideoIDInvalid, err.Error())
	}

	var req dto.UpdateVideoRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	khttp.SetOperation(ctx, OperationVideoUpdate)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		input, err := dto.ToUpdateVideoInput(videoID, &req)
		if err != nil {
			return nil, kerrors.BadRequest(services.ReasonValidationFailed, err.Error())
		}

		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		timeoutCtx = InjectHandlerMetadata(timeoutCtx, h.ExtractMetadata(c))

		updated, err := h.commands.UpdateVideo(timeoutCtx, input)
		if err != nil {
			return nil, err
		}
		return dto.NewUpdateVideoResponse(updated), nil
	})

	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, out)
}

func (h *VideoHandler) deleteVideo(ctx khttp.Context) error {
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonVideoIDInvalid, err.Error())
	}

	khttp.SetOperation(ctx, OperationVideoDelete)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()

		deleted, err := h.commands.DeleteVideo(timeoutCtx, services.DeleteVideoInput{VideoID: videoID})
		if err != nil {
			return nil, err
		}
		return dto.NewDeleteVideoResponse(deleted), nil
	})

	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, out)
}

func (h *VideoHandler) getVideo(ctx khttp.Context) error {
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonVideoIDInvalid, err.Error())
	}

	khttp.SetOperation(ctx, OperationVideoGet)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()

		detail, err := h.queries.GetVideo(timeoutCtx, videoID)
		if err != nil {
			return nil, err
		}
		return &dto.GetVideoResponse{Video: detail}, nil
	})

	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, out)
}

func (h *VideoHandler) listVideos(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationVideoList)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()

		details, err := h.queries.ListVideos(timeoutCtx)
		if err != nil {
			return nil, err
		}
		return &dto.ListVideosResponse{Videos: details, Total: len(details)}, nil
	})

	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(stdhttp.StatusOK, out)
}
