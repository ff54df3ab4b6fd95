package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"shortme.local/internal/app/shortme"
	"shortme.local/internal/platform/metrics"
)

const (
	codeKeyPrefix = "sl:code:"
	urlKeyPrefix  = "sl:url:"
)

// DefaultTTL 是缓存记录的默认存活时间（与权威存储不一致的最长窗口）。
const DefaultTTL = time.Hour

// cachedLink 是写进 Redis 的镜像记录（JSON）。
// 字段与领域记录一致，额外带 ttl_seconds 方便排查时直接看出过期配置。
type cachedLink struct {
	ID         int64               `json:"id"`
	ShortCode  string              `json:"short_code"`
	LongURL    string              `json:"long_url"`
	CreatedAt  time.Time           `json:"created_at"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
	Status     shortme.LinkStatus  `json:"status"`
	TTLSeconds int64               `json:"ttl_seconds"`
}

// LinkCache 实现 shortme.CacheStore：L1 本地缓存（ristretto）+ L2 Redis。
//
// 主键是 sl:code:{code}，另写一份 sl:url:{longURL} -> code 的二级索引，
// 支持按长链接反查（同一长链接是否已有短码）。
//
// 这里不做负缓存：缺失永远回源数据库，核心的约定是“缓存缺失 != 链接不存在”。
type LinkCache struct {
	client *redis.Client
	local  *LocalCache
	ttl    time.Duration
}

func NewLinkCache(client *redis.Client, local *LocalCache, ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LinkCache{
		client: client,
		local:  local,
		ttl:    ttl,
	}
}

var _ shortme.CacheStore = (*LinkCache)(nil)

// Put 同时写入 L1、L2 和长链接二级索引。两条 Redis 写合并成一个 pipeline。
func (c *LinkCache) Put(ctx context.Context, rec *shortme.LinkRecord) error {
	if c.local != nil {
		c.local.Set(rec)
	}

	data, err := json.Marshal(toCached(rec, c.ttl))
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, codeKeyPrefix+rec.ShortCode, data, c.ttl)
	pipe.Set(ctx, urlKeyPrefix+rec.LongURL, rec.ShortCode, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.CacheOperations.WithLabelValues("l2", "write_error").Inc()
		return err
	}
	return nil
}

// GetByCode 按短码取记录：先 L1 再 L2，未命中返回 (nil, nil)。
// L2 命中时回填 L1。
func (c *LinkCache) GetByCode(ctx context.Context, code string) (*shortme.LinkRecord, error) {
	if c.local != nil {
		if rec, ok := c.local.Get(code); ok {
			metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
			return rec, nil
		}
	}

	data, err := c.client.Get(ctx, codeKeyPrefix+code).Bytes()
	if err == redis.Nil {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.CacheOperations.WithLabelValues("l2", "error").Inc()
		return nil, err
	}

	var cached cachedLink
	if err := json.Unmarshal(data, &cached); err != nil {
		// 缓存里的坏数据当未命中处理，回源后会被覆盖。
		metrics.CacheOperations.WithLabelValues("l2", "decode_error").Inc()
		return nil, nil
	}
	metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()

	rec := cached.toRecord()
	if c.local != nil {
		c.local.Set(rec)
	}
	return rec, nil
}

// GetByLongURL 经二级索引反查：url -> code -> 记录。
func (c *LinkCache) GetByLongURL(ctx context.Context, longURL string) (*shortme.LinkRecord, error) {
	code, err := c.client.Get(ctx, urlKeyPrefix+longURL).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.GetByCode(ctx, code)
}

// Invalidate 删除短码对应的缓存项（以及能找到的二级索引）。
// 核心的写路径目前不调用它，留给未来的更新/删除操作。
func (c *LinkCache) Invalidate(ctx context.Context, code string) error {
	if c.local != nil {
		c.local.Del(code)
	}

	// 先读出记录才能定位 url 索引键；读不到就只删主键。
	if data, err := c.client.Get(ctx, codeKeyPrefix+code).Bytes(); err == nil {
		var cached cachedLink
		if json.Unmarshal(data, &cached) == nil && cached.LongURL != "" {
			pipe := c.client.Pipeline()
			pipe.Del(ctx, codeKeyPrefix+code)
			pipe.Del(ctx, urlKeyPrefix+cached.LongURL)
			_, err := pipe.Exec(ctx)
			return err
		}
	}
	return c.client.Del(ctx, codeKeyPrefix+code).Err()
}

// Close 关闭 L1 本地缓存（Redis client 的生命周期归 main 管）。
func (c *LinkCache) Close() {
	if c.local != nil {
		c.local.Close()
	}
}

func toCached(rec *shortme.LinkRecord, ttl time.Duration) cachedLink {
	return cachedLink{
		ID:         rec.ID,
		ShortCode:  rec.ShortCode,
		LongURL:    rec.LongURL,
		CreatedAt:  rec.CreatedAt,
		ExpiresAt:  rec.ExpiresAt,
		Status:     rec.Status,
		TTLSeconds: int64(ttl / time.Second),
	}
}

func (c cachedLink) toRecord() *shortme.LinkRecord {
	return &shortme.LinkRecord{
		ID:        c.ID,
		ShortCode: c.ShortCode,
		LongURL:   c.LongURL,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
		Status:    c.Status,
	}
}
