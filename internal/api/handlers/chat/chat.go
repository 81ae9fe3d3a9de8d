// Package chat 處理聊天端點：一段對話歷史進來，一則回覆出去。
package chat

import (
	"net/http"

	chatService "home-chef-ai/internal/core/chat"
	"home-chef-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request 聊天請求
type Request struct {
	Messages []common.ChatMessage `json:"messages" binding:"required"`
}

// Handler 聊天處理器
type Handler struct {
	service *chatService.Service
}

// NewHandler 創建聊天處理器
func NewHandler(service *chatService.Service) *Handler {
	return &Handler{service: service}
}

// Handle 處理 POST /api/v1/chat
func (h *Handler) Handle(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("聊天請求格式錯誤", zap.Error(err))
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "請求格式錯誤",
			Details: err.Error(),
		})
		return
	}

	// 至少要有一則使用者訊息
	hasUserTurn := false
	for _, m := range req.Messages {
		if m.Role == "user" {
			hasUserTurn = true
			break
		}
	}
	if !hasUserTurn {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "對話中至少要有一則使用者訊息",
		})
		return
	}

	resp, err := h.service.Handle(c.Request.Context(), req.Messages)
	if err != nil {
		status, code := common.HTTPStatus(err)
		common.LogError("聊天回合失敗",
			zap.Error(err),
			zap.Int("status", status),
			zap.String("request_id", requestID),
		)
		c.JSON(status, common.ErrorResponse{
			Code:    code,
			Message: "處理聊天訊息時發生錯誤",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
