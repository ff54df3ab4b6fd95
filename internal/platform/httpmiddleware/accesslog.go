package httpmiddleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// AccessLog 每个请求结束后打一条结构化访问日志。
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			slog.InfoContext(req.Context(), "access",
				"request_id", req.Header.Get(requestIDHeader),
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"bytes", c.Response().Size,
				"latency_ms", time.Since(start).Milliseconds())
			return nil
		}
	}
}
