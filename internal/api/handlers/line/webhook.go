// Package line 接收 LINE Messaging API 的 webhook 並回覆訊息。
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	chatService "home-chef-ai/internal/core/chat"
	"home-chef-ai/internal/infrastructure/config"
	"home-chef-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const replyEndpoint = "https://api.line.me/v2/bot/message/reply"

// webhookBody LINE webhook 的事件信封
type webhookBody struct {
	Events []event `json:"events"`
}

type event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Message    message `json:"message"`
}

type message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Handler LINE webhook 處理器
type Handler struct {
	channelSecret string
	channelToken  string
	chat          *chatService.Service
	client        *resty.Client
}

// NewHandler 創建 webhook 處理器
func NewHandler(cfg *config.Config, chat *chatService.Service) *Handler {
	return &Handler{
		channelSecret: cfg.Line.ChannelSecret,
		channelToken:  cfg.Line.ChannelToken,
		chat:          chat,
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetAuthToken(cfg.Line.ChannelToken),
	}
}

// Handle 處理 POST /line/webhook。
// 簽名不符回 400；事件處理失敗仍回 200，避免 LINE 平台重送。
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "無法讀取請求體",
		})
		return
	}

	if !h.validSignature(body, c.GetHeader("X-Line-Signature")) {
		common.LogWarn("LINE webhook 簽名驗證失敗",
			zap.String("ip", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeUnauthorized,
			Message: "簽名驗證失敗",
		})
		return
	}

	var payload webhookBody
	if err := common.ParseJSONBytes(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "事件格式錯誤",
		})
		return
	}

	for _, ev := range payload.Events {
		if ev.Type != "message" || ev.Message.Type != "text" || ev.ReplyToken == "" {
			continue
		}
		h.handleTextMessage(c, ev)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleTextMessage 把單則文字訊息當成一個聊天回合處理並回覆
func (h *Handler) handleTextMessage(c *gin.Context, ev event) {
	resp, err := h.chat.Handle(c.Request.Context(), []common.ChatMessage{
		{Role: "user", Content: ev.Message.Text},
	})

	reply := ""
	if err != nil {
		common.LogError("LINE 訊息處理失敗", zap.Error(err))
		reply = "抱歉，發生錯誤了，請再試一次。"
	} else {
		reply = resp.Message
	}
	if reply == "" {
		return
	}

	if err := h.sendReply(ev.ReplyToken, reply); err != nil {
		common.LogError("LINE 回覆失敗", zap.Error(err))
	}
}

// sendReply 透過 Messaging API 回覆
func (h *Handler) sendReply(replyToken, text string) error {
	resp, err := h.client.R().
		SetBody(map[string]interface{}{
			"replyToken": replyToken,
			"messages": []map[string]string{
				{"type": "text", "text": text},
			},
		}).
		Post(replyEndpoint)
	if err != nil {
		return common.NewTransportError("line", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return common.NewTransportError("line",
			&statusError{status: resp.StatusCode(), body: resp.String()})
	}
	return nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return "reply API status " + http.StatusText(e.status) + ": " + e.body
}

// validSignature 驗證 X-Line-Signature（body 的 HMAC-SHA256，base64 編碼）
func (h *Handler) validSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.channelSecret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}
