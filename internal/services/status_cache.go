package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docuchat/backend-go/internal/logger"
	"go.uber.org/zap"
)

const statusCacheTTL = 10 * time.Minute

// StatusCache 文档状态的Redis缓存，轮询状态接口优先走缓存。
// 缓存只是加速，Redis不可用时直接回源数据库。
type StatusCache struct {
	rdb *redis.Client
}

// NewStatusCache 创建状态缓存，rdb为nil时所有操作退化为未命中
func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{rdb: rdb}
}

func statusCacheKey(userID, documentID uint) string {
	return fmt.Sprintf("document:status:%d:%d", userID, documentID)
}

// Set 写入文档状态
func (c *StatusCache) Set(ctx context.Context, userID, documentID uint, status string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, statusCacheKey(userID, documentID), status, statusCacheTTL).Err(); err != nil {
		logger.Warn("failed to cache document status",
			zap.Uint("documentID", documentID),
			zap.Error(err))
	}
}

// Get 读取文档状态，第二个返回值表示是否命中
func (c *StatusCache) Get(ctx context.Context, userID, documentID uint) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	status, err := c.rdb.Get(ctx, statusCacheKey(userID, documentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("failed to read document status cache",
				zap.Uint("documentID", documentID),
				zap.Error(err))
		}
		return "", false
	}
	return status, true
}

// Invalidate 删除缓存条目
func (c *StatusCache) Invalidate(ctx context.Context, userID, documentID uint) {
	if c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, statusCacheKey(userID, documentID))
}
