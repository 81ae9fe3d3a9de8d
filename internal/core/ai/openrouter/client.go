// Package openrouter 是 OpenRouter chat-completions API 的薄客戶端。
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"home-chef-ai/internal/infrastructure/config"
	"home-chef-ai/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter API 客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 OpenRouter 客戶端。
// 瞬時失敗（網路層錯誤或 5xx）重試一次，應用層錯誤不重試。
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://home-chef-ai.example.com").
		SetHeader("X-Title", "Home Chef AI").
		SetRetryCount(1).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		config: cfg,
		client: client,
	}
}

// Chat 送出完整的對話歷史並取得模型的原始文字回覆
func (c *Client) Chat(ctx context.Context, messages []common.ChatMessage) (string, error) {
	req := map[string]interface{}{
		"model":      c.config.OpenRouter.Model,
		"messages":   messages,
		"max_tokens": c.config.OpenRouter.MaxTokens,
		// 要求模型一律輸出 JSON 物件；不支援的模型會忽略這個參數，
		// 由 intent 端的抽取策略兜底
		"response_format": map[string]string{"type": "json_object"},
	}

	common.LogDebug("呼叫 OpenRouter",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("messages", len(messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", common.NewTransportError("model", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if resp.StatusCode() >= http.StatusInternalServerError {
			return "", common.NewTransportError("model", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
		}
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogDebug("OpenRouter 回覆",
		zap.Int("content_length", len(content)),
	)

	return content, nil
}

// Generate 單輪提示的便利方法（給爬蟲抽取用）
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, []common.ChatMessage{{Role: "user", Content: prompt}})
}
