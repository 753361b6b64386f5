package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/domain/entity"
	"webgen-ai-api/internal/interfaces/http/dto"
	apperrors "webgen-ai-api/pkg/errors"
	"webgen-ai-api/pkg/logger"
)

// MalformedReplyMessage 助手回复无法落盘时返回给客户端的固定文案
const MalformedReplyMessage = "Invalid response format from assistant"

// ChatService 会话轮次服务（chat.Service 实现）
type ChatService interface {
	TurnWith(ctx context.Context, conv entity.Conversation, opts chat.Options) (*chat.TurnResult, error)
}

// ChatHandler 对话生成处理器
type ChatHandler struct {
	svc     ChatService
	baseDir string
}

// NewChatHandler 创建对话生成处理器
func NewChatHandler(svc ChatService, cfg *config.Config) *ChatHandler {
	return &ChatHandler{svc: svc, baseDir: cfg.Generation.BaseDir}
}

// Chat 发送一轮对话并把助手返回的文件写入隔离目录
// @Summary 生成站点
// @Description 调用大模型生成 文件名 -> 内容 的 JSON，并写入 examples/<id>/
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "对话历史"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// HTTP 请求之间互不可见，始终写入新的隔离目录，不受 generation.isolate 影响
	res, err := h.svc.TurnWith(ctx, req.ToConversation(), chat.Options{BaseDir: h.baseDir, Isolate: true})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{
		Path:     res.Path,
		Response: dto.FromConversation(res.Conversation),
	})
}

func (h *ChatHandler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	_ = c.Error(err)

	if errors.Is(err, apperrors.ErrMalformedPayload) {
		logger.Warn(ctx, "assistant reply could not be materialized", "error", err.Error())
		dto.ErrorWithDetail(c, http.StatusInternalServerError, MalformedReplyMessage, err.Error())
		return
	}

	if appErr := apperrors.AsAppError(err); appErr != nil {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error(ctx, "chat turn failed", err)
		}
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, appErr.Detail)
		return
	}

	logger.Error(ctx, "chat turn failed", err)
	dto.InternalError(c, "failed to generate files")
}
