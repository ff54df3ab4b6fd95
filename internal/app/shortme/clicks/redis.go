package clicks

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shortme.local/internal/app/shortme"
	"shortme.local/internal/platform/metrics"
)

// dailyTTL 是按天计数键的保留时长：只留最近 30 天的明细，总数永久累计。
const dailyTTL = 30 * 24 * time.Hour

// RedisCounter 实现 shortme.ClickCounter：每次跳转累加两个计数器，
// 一个终身总数，一个按自然日（带 30 天过期）。
//
// fire-and-forget：任何 Redis 故障只记日志和指标，绝不影响跳转响应。
type RedisCounter struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisCounter(client *redis.Client, logger *slog.Logger) *RedisCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCounter{client: client, log: logger}
}

var _ shortme.ClickCounter = (*RedisCounter)(nil)

func totalKey(code string) string {
	return "clicks:code:" + code + ":total"
}

func dailyKey(code string, day time.Time) string {
	return "clicks:code:" + code + ":day:" + day.UTC().Format("2006-01-02")
}

// Increment 累加总数与当日计数，并给当日键续 30 天过期。三条命令合并成一个 pipeline。
func (c *RedisCounter) Increment(ctx context.Context, code string) {
	day := dailyKey(code, time.Now())

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, totalKey(code))
	pipe.Incr(ctx, day)
	pipe.Expire(ctx, day, dailyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.ClickUpdateFailures.Inc()
		c.log.WarnContext(ctx, "click increment failed", "code", code, "err", err)
	}
}

// TotalClicks 读取终身总点击数；键不存在视为 0。
func (c *RedisCounter) TotalClicks(ctx context.Context, code string) (int64, error) {
	n, err := c.client.Get(ctx, totalKey(code)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// DailyClicks 读取某一天的点击数；过期或不存在视为 0。
func (c *RedisCounter) DailyClicks(ctx context.Context, code string, day time.Time) (int64, error) {
	n, err := c.client.Get(ctx, dailyKey(code, day)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
