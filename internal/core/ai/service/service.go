// Package service 是模型呼叫的門面：統一掛上快取後再轉交 OpenRouter。
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"home-chef-ai/internal/core/ai/cache"
	"home-chef-ai/internal/core/ai/openrouter"
	"home-chef-ai/internal/infrastructure/config"
	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 服務門面
type Service struct {
	client *openrouter.Client
	store  cache.Store
	ttl    time.Duration
}

// NewService 創建 AI 服務。
// cfg.Cache.Backend 為 redis 時嘗試連線 Redis，連不上就降級成記憶體快取。
func NewService(ctx context.Context, cfg *config.Config) *Service {
	s := &Service{
		client: openrouter.NewClient(cfg),
		ttl:    cfg.Cache.TTL,
	}

	if !cfg.Cache.Enabled {
		return s
	}

	if cfg.Cache.Backend == "redis" {
		store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr)
		if err == nil {
			s.store = store
			return s
		}
		common.LogWarn("Redis 連線失敗，改用記憶體快取", zap.Error(err))
	}
	s.store = cache.NewMemoryStore(cfg.Cache.MaxSize, cfg.Cache.CleanupInterval)
	return s
}

// Chat 帶快取的多輪對話呼叫
func (s *Service) Chat(ctx context.Context, messages []common.ChatMessage) (string, error) {
	key := chatKey(messages)
	if s.store != nil {
		if val, ok := s.store.Get(ctx, key); ok {
			common.LogDebug("模型回覆快取命中", zap.String("key", key[:12]))
			return val, nil
		}
	}

	raw, err := s.client.Chat(ctx, messages)
	if err != nil {
		return "", err
	}

	if s.store != nil {
		s.store.Set(ctx, key, raw, s.ttl)
	}
	return raw, nil
}

// Generate 帶快取的單輪提示呼叫
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	return s.Chat(ctx, []common.ChatMessage{{Role: "user", Content: prompt}})
}

// Close 釋放快取後端資源
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// chatKey 以對話內容的雜湊當快取鍵
func chatKey(messages []common.ChatMessage) string {
	h := sha256.New()
	for _, m := range messages {
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
