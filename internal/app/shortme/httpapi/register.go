package httpapi

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/app/shortme"
	"shortme.local/internal/app/shortme/clicks"
	"shortme.local/internal/app/shortme/stats"
	"shortme.local/internal/platform/httpmiddleware"
	"shortme.local/internal/platform/ratelimit"
)

// 各路由的限流配额：创建是写操作限得紧，跳转是读路径放得宽。
const (
	createRateLimit   = 10
	redirectRateLimit = 100
	rateLimitWindow   = time.Minute
)

// RegisterAPIRoutes 挂载 /api/links 下的 JSON 接口。
// limiter 为 nil 时不限流（本地开发或压测场景）。
func RegisterAPIRoutes(e *echo.Echo, engine *shortme.LinkEngine, counter *clicks.RedisCounter, baseURL string, limiter *ratelimit.Limiter, logger *slog.Logger) {
	g := e.Group("/api/links")

	create := NewCreateHandler(engine, baseURL)
	if limiter != nil {
		g.POST("", create, httpmiddleware.RateLimit(limiter, "rl:create", createRateLimit, rateLimitWindow))
	} else {
		g.POST("", create)
	}

	g.GET("", NewWelcomeHandler())
	g.GET("/:code/stats", NewStatsHandler(counter, logger))

	// 管理类接口占位：路由先占住,逻辑后补。
	stub := NewStubHandler()
	g.GET("/:id", stub)
	g.PUT("/:id", stub)
	g.DELETE("/:id", stub)
}

// RegisterPublicRoutes 挂载对外的跳转路由与错误页。
func RegisterPublicRoutes(e *echo.Echo, engine *shortme.LinkEngine, counter shortme.ClickCounter, collector stats.Collector, limiter *ratelimit.Limiter) {
	e.GET("/error", NewErrorPageHandler())

	redirect := NewRedirectHandler(engine, counter, collector)
	if limiter != nil {
		e.GET("/:code", redirect, httpmiddleware.RateLimit(limiter, "rl:redirect", redirectRateLimit, rateLimitWindow))
	} else {
		e.GET("/:code", redirect)
	}
}
