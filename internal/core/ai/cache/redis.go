package cache

import (
	"context"
	"time"

	"home-chef-ai/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// keyPrefix 避免與同一個 Redis 上的其他服務衝突
const keyPrefix = "homechef:ai:"

// RedisStore Redis 快取後端
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 連線到 Redis；連不上時返回錯誤，由呼叫端決定是否降級
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", addr))
	return &RedisStore{client: client}, nil
}

// Get 取得快取值；Redis 故障視同未命中，不阻斷請求
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		common.LogWarn("Redis 讀取失敗", zap.Error(err))
		return "", false
	}
	return val, true
}

// Set 寫入快取；失敗只記錄，不影響主流程
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		common.LogWarn("Redis 寫入失敗", zap.Error(err))
	}
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
