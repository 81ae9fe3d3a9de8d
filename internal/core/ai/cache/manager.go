// Package cache 提供模型回覆的快取，減少重複呼叫的成本。
// 支援程序內記憶體後端與 Redis 後端。
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 快取後端的最小介面
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Close() error
}

// entry 記憶體快取條目
type entry struct {
	key       string
	value     string
	expiresAt time.Time
}

// MemoryStore 程序內 TTL + LRU 快取
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // 最近使用的在最前面
	maxSize int

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewMemoryStore 創建記憶體快取並啟動定期清理
func NewMemoryStore(maxSize int, cleanupInterval time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 100
	}
	s := &MemoryStore{
		items:       make(map[string]*list.Element),
		order:       list.New(),
		maxSize:     maxSize,
		stopCleanup: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

// Get 取得快取值；過期的條目視同不存在並順手移除
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return "", false
	}
	e := elem.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		s.removeLocked(elem)
		return "", false
	}
	s.order.MoveToFront(elem)
	return e.value, true
}

// Set 寫入快取；容量滿時淘汰最久未使用的條目
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		s.order.MoveToFront(elem)
		return
	}

	for s.order.Len() >= s.maxSize {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest)
	}

	elem := s.order.PushFront(&entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	s.items[key] = elem
}

// Close 停止清理協程
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

func (s *MemoryStore) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(s.items, e.key)
	s.order.Remove(elem)
}

// cleanupLoop 定期掃除過期條目
func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			removed := 0
			for elem := s.order.Back(); elem != nil; {
				prev := elem.Prev()
				if now.After(elem.Value.(*entry).expiresAt) {
					s.removeLocked(elem)
					removed++
				}
				elem = prev
			}
			s.mu.Unlock()
			if removed > 0 {
				common.LogDebug("清理過期快取", zap.Int("removed", removed))
			}
		}
	}
}
