package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_UsesDefaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("ADMIN_ADDR", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("KAFKA_ENABLED", "")
	t.Setenv("RATELIMIT_ENABLED", "")

	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Fatalf("Addr: got %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.AdminAddr != "127.0.0.1:6060" {
		t.Fatalf("AdminAddr: got %q", cfg.AdminAddr)
	}
	if cfg.CacheTTL != time.Hour {
		t.Fatalf("CacheTTL: got %v, want %v", cfg.CacheTTL, time.Hour)
	}
	if cfg.LocalCacheSize != 100_000 {
		t.Fatalf("LocalCacheSize: got %d", cfg.LocalCacheSize)
	}
	if cfg.BloomExpected != 1_000_000 {
		t.Fatalf("BloomExpected: got %d", cfg.BloomExpected)
	}
	if cfg.KafkaEnabled {
		t.Fatal("KafkaEnabled: want false by default")
	}
	if !cfg.RateLimitEnabled {
		t.Fatal("RateLimitEnabled: want true by default")
	}
	if cfg.KafkaTopic != "click-events" {
		t.Fatalf("KafkaTopic: got %q", cfg.KafkaTopic)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel: got %v", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout: got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("BASE_URL", "https://sho.rt/")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_DSN", "postgres://u:p@db:5432/links")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("LOCAL_CACHE_SIZE", "5000")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Setenv("MIGRATE_ON_START", "true")

	cfg := Load()

	if cfg.Addr != ":9090" {
		t.Fatalf("Addr: got %q", cfg.Addr)
	}
	// BASE_URL 末尾的斜杠要去掉,拼短链时统一补。
	if cfg.BaseURL != "https://sho.rt" {
		t.Fatalf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel: got %v", cfg.LogLevel)
	}
	if cfg.DBDSN != "postgres://u:p@db:5432/links" {
		t.Fatalf("DBDSN: got %q", cfg.DBDSN)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Fatalf("CacheTTL: got %v", cfg.CacheTTL)
	}
	if cfg.LocalCacheSize != 5000 {
		t.Fatalf("LocalCacheSize: got %d", cfg.LocalCacheSize)
	}
	if !cfg.KafkaEnabled {
		t.Fatal("KafkaEnabled: want true")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers: got %v", cfg.KafkaBrokers)
	}
	if cfg.RateLimitEnabled {
		t.Fatal("RateLimitEnabled: want false")
	}
	if !cfg.MigrateOnStart {
		t.Fatal("MigrateOnStart: want true")
	}
}

func TestLoad_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("LOCAL_CACHE_SIZE", "-5")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg := Load()

	if cfg.CacheTTL != time.Hour {
		t.Fatalf("CacheTTL: got %v, want default", cfg.CacheTTL)
	}
	if cfg.LocalCacheSize != 100_000 {
		t.Fatalf("LocalCacheSize: got %d, want default", cfg.LocalCacheSize)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel: got %v, want default", cfg.LogLevel)
	}
}
