package clicks

import (
	"context"
	"os"
	"testing"
	"time"

	platformcache "shortme.local/internal/platform/cache"
)

func TestClickKeys(t *testing.T) {
	if got, want := totalKey("g7x"), "clicks:code:g7x:total"; got != want {
		t.Errorf("totalKey: got %q, want %q", got, want)
	}

	day := time.Date(2025, 3, 9, 23, 50, 0, 0, time.UTC)
	if got, want := dailyKey("g7x", day), "clicks:code:g7x:day:2025-03-09"; got != want {
		t.Errorf("dailyKey: got %q, want %q", got, want)
	}
}

func TestDailyKeyUsesUTC(t *testing.T) {
	// 本地时区的深夜换算成 UTC 后可能是另一天;键必须按 UTC 归日。
	loc := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2025, 3, 10, 1, 0, 0, 0, loc) // UTC 2025-03-09 17:00
	if got, want := dailyKey("a", local), "clicks:code:a:day:2025-03-09"; got != want {
		t.Errorf("dailyKey: got %q, want %q", got, want)
	}
}

func setupCounter(t *testing.T) *RedisCounter {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := platformcache.NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Skipf("Skipping test: cannot connect to redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedisCounter(client, nil)
}

func TestIncrementAndRead(t *testing.T) {
	c := setupCounter(t)
	ctx := context.Background()

	code := "test-clicks-" + time.Now().Format("150405.000")
	t.Cleanup(func() {
		c.client.Del(ctx, totalKey(code), dailyKey(code, time.Now()))
	})

	c.Increment(ctx, code)
	c.Increment(ctx, code)
	c.Increment(ctx, code)

	total, err := c.TotalClicks(ctx, code)
	if err != nil {
		t.Fatalf("TotalClicks: %v", err)
	}
	if total != 3 {
		t.Fatalf("total: got %d, want 3", total)
	}

	today, err := c.DailyClicks(ctx, code, time.Now())
	if err != nil {
		t.Fatalf("DailyClicks: %v", err)
	}
	if today != 3 {
		t.Fatalf("today: got %d, want 3", today)
	}

	// 当日键要带过期,总数键不带。
	ttl, err := c.client.TTL(ctx, dailyKey(code, time.Now())).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > dailyTTL {
		t.Fatalf("daily key TTL out of range: %v", ttl)
	}
}

func TestReadMissingCodeIsZero(t *testing.T) {
	c := setupCounter(t)
	ctx := context.Background()

	total, err := c.TotalClicks(ctx, "never-clicked-code")
	if err != nil {
		t.Fatalf("TotalClicks: %v", err)
	}
	if total != 0 {
		t.Fatalf("total for unknown code: got %d, want 0", total)
	}

	day, err := c.DailyClicks(ctx, "never-clicked-code", time.Now())
	if err != nil {
		t.Fatalf("DailyClicks: %v", err)
	}
	if day != 0 {
		t.Fatalf("day for unknown code: got %d, want 0", day)
	}
}
