package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/insurhub/backend-go/internal/config"
	"github.com/insurhub/backend-go/internal/logger"
	"github.com/insurhub/backend-go/internal/rag"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AnswerCache 问答结果缓存
// 同一问题在TTL内重复提问直接返回缓存应答，client为nil时全部方法静默降级
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnswerCache 创建问答缓存实例
// 未启用或连接失败时返回nil客户端的缓存，调用链不受影响
func NewAnswerCache(cfg config.CacheConfig) *AnswerCache {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if !cfg.Enabled {
		return &AnswerCache{ttl: ttl}
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis连接失败，问答缓存降级为关闭", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return &AnswerCache{ttl: ttl}
	}

	logger.Info("问答缓存初始化完成", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", ttl))
	return &AnswerCache{client: client, ttl: ttl}
}

// Enabled 缓存是否可用
func (c *AnswerCache) Enabled() bool {
	return c != nil && c.client != nil
}

// cacheKey 以规整后问题的哈希作为键，避免键名被超长问题撑爆
func cacheKey(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return "qa:answer:" + hex.EncodeToString(sum[:])
}

// Get 查询缓存应答，未命中返回nil
func (c *AnswerCache) Get(ctx context.Context, question string) *rag.Answer {
	if !c.Enabled() {
		return nil
	}

	val, err := c.client.Get(ctx, cacheKey(question)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logger.Warn("问答缓存读取失败", zap.Error(err))
		return nil
	}

	var answer rag.Answer
	if err := json.Unmarshal([]byte(val), &answer); err != nil {
		logger.Warn("问答缓存反序列化失败", zap.Error(err))
		return nil
	}
	return &answer
}

// Set 写入缓存应答，失败只记日志
func (c *AnswerCache) Set(ctx context.Context, question string, answer *rag.Answer) {
	if !c.Enabled() || answer == nil {
		return
	}

	data, err := json.Marshal(answer)
	if err != nil {
		logger.Warn("问答缓存序列化失败", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(question), data, c.ttl).Err(); err != nil {
		logger.Warn("问答缓存写入失败", zap.Error(err))
	}
}

// Close 关闭底层连接
func (c *AnswerCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
