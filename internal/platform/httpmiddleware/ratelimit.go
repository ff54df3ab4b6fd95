package httpmiddleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/platform/ratelimit"
)

// RateLimit 基于 Redis 滑动窗口按客户端 IP 限流。
// Redis 不可用时放行(fail-open),限流是保护手段,不能成为单点。
func RateLimit(limiter *ratelimit.Limiter, prefix string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ip := ClientIP(req)
			key := prefix + ":" + ip
			member := strconv.FormatInt(time.Now().UnixNano(), 10) + ":" + newRequestID()

			allowed, retryAfter, err := limiter.Allow(req.Context(), key, limit, window, member)
			if err != nil {
				slog.WarnContext(req.Context(), "rate limit check failed, allowing request",
					"key", key, "error", err)
				return next(c)
			}
			if !allowed {
				c.Response().Header().Set("Retry-After",
					strconv.Itoa(int(retryAfter.Seconds())+1))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"success": false,
					"message": "Too many requests, please retry later",
				})
			}
			return next(c)
		}
	}
}

// ClientIP 解析客户端真实 IP:仅当直连方是可信代理时才相信 X-Forwarded-For,
// 否则任何人都能伪造头绕过限流。
func ClientIP(req *http.Request) string {
	remote, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		remote = req.RemoteAddr
	}
	if !isTrustedProxy(remote) {
		return remote
	}
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		ip := strings.TrimSpace(parts[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	if real := strings.TrimSpace(req.Header.Get("X-Real-IP")); real != "" {
		if net.ParseIP(real) != nil {
			return real
		}
	}
	return remote
}

func isTrustedProxy(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate()
}
