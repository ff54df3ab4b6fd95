package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shortme.local/internal/app/shortme"
	slcache "shortme.local/internal/app/shortme/cache"
	"shortme.local/internal/app/shortme/clicks"
	"shortme.local/internal/app/shortme/httpapi"
	"shortme.local/internal/app/shortme/repo"
	"shortme.local/internal/app/shortme/stats"
	platformcache "shortme.local/internal/platform/cache"
	"shortme.local/internal/platform/config"
	"shortme.local/internal/platform/db"
	"shortme.local/internal/platform/httpmiddleware"
	"shortme.local/internal/platform/httpserver"
	"shortme.local/internal/platform/metrics"
	"shortme.local/internal/platform/migrate"
	"shortme.local/internal/platform/ratelimit"
	"shortme.local/internal/platform/trace"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg := config.Load()

	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	}
	logger := slog.New(h).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	// DB
	dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	dbPool, errDB := db.New(dbCtx, cfg.DBDSN)
	if errDB != nil {
		log.Fatal(errDB)
	}
	defer dbPool.Close()
	if err := dbPool.Ping(dbCtx); err != nil {
		log.Fatal(err)
	}
	slog.Info("数据库连接成功")

	if cfg.MigrateOnStart {
		res, err := migrate.Up(context.Background(), dbPool, migrate.Options{})
		if err != nil {
			log.Fatal(err)
		}
		slog.Info("迁移完成", "applied", len(res.AppliedFiles), "skipped", len(res.SkippedFiles))
	}

	// Redis
	redisClient, errRedis := platformcache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if errRedis != nil {
		log.Fatal(errRedis)
	}
	defer redisClient.Close()

	// 限流器
	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewLimiter(redisClient)
	} else {
		slog.Warn("RateLimit disabled by config", "RATELIMIT_ENABLED", false)
	}

	// 短链缓存：L1 本地 + L2 Redis
	localCache, errLocal := slcache.NewLocalCache(cfg.LocalCacheSize)
	if errLocal != nil {
		log.Fatal(errLocal)
	}
	linkCache := slcache.NewLinkCache(redisClient, localCache, cfg.CacheTTL)
	defer linkCache.Close()

	// 布隆过滤器：1% 误判率,启动时用库里已有短码预热
	codeFilter := slcache.NewCodeFilter(cfg.BloomExpected, 0.01)
	linksRepo := repo.NewLinksRepo(dbPool)
	if n, err := linksRepo.SeedCodeFilter(context.Background(), codeFilter.Add); err != nil {
		slog.Warn("布隆过滤器预热失败", "err", err)
	} else {
		slog.Info("布隆过滤器预热完成", "codes", n)
	}

	engine := shortme.NewLinkEngine(linksRepo, linkCache, codeFilter, logger)
	counter := clicks.NewRedisCounter(redisClient, logger)

	// 点击明细收集器（根据配置选择 Channel 或 Kafka）
	var collector stats.Collector
	var kafkaConsumer *stats.KafkaConsumer
	var channelConsumer *stats.Consumer
	if cfg.KafkaEnabled {
		slog.Info("使用 Kafka 收集点击明细", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		collector = stats.NewKafkaCollector(cfg.KafkaBrokers, cfg.KafkaTopic)
		kafkaConsumer = stats.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, dbPool)
	} else {
		slog.Info("使用 Channel 收集点击明细")
		channelCollector := stats.NewChannelCollector(10000)
		collector = channelCollector
		channelConsumer = stats.NewConsumer(dbPool, channelCollector)
	}

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown := trace.Init(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName)
		if shutdown == nil {
			slog.Error("Trace init failed")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error(err.Error())
				}
			}()
		}
	} else {
		slog.Warn("Tracing disabled by config", "TRACING_ENABLED", false)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost" + cfg.Addr
	}

	// 对外业务
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), httpmiddleware.ReqID(), httpmiddleware.AccessLog(),
		httpmiddleware.Metrics(), httpmiddleware.TraceName())

	httpapi.RegisterAPIRoutes(e, engine, counter, baseURL, limiter, logger)
	httpapi.RegisterPublicRoutes(e, engine, counter, collector, limiter)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	publicHandler := http.Handler(e)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(e, "http")
	}
	publicSrv := httpserver.New(cfg, cfg.Addr, publicHandler)

	// 仅本机/内网
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := dbPool.Ping(pingCtx); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("DB Ping Err"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("DB ready"))
	})
	adminMux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"service_name": cfg.ServiceName,
			"version":      version,
			"commit":       commit,
			"build_time":   buildTime,
			"go_version":   runtime.Version(),
		})
	})
	if cfg.PprofEnabled {
		adminMux.HandleFunc("/debug/pprof/", pprof.Index)
		adminMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		adminMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		adminMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		adminMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	adminSrv := httpserver.New(cfg, cfg.AdminAddr, adminMux)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 2)
	go func() {
		errch <- httpserver.Run(publicSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.Run(adminSrv, cfg.ShutdownTimeout, stopCtx)
	}()

	if kafkaConsumer != nil {
		go kafkaConsumer.Run(stopCtx)
		defer kafkaConsumer.Close()
	}
	if channelConsumer != nil {
		go channelConsumer.Run(stopCtx)
	}
	defer collector.Close()

	err := <-errch
	if err != nil {
		stop()
		select {
		case <-errch:
		case <-time.After(cfg.ShutdownTimeout + time.Second):
		}
		log.Fatal(err)
	}

	stop()
	<-errch
}
