package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/platform/metrics"
)

// Metrics 记录每个请求的计数与耗时,route 维度用注册时的路由模板,
// 避免 /:code 这类路径参数把标签基数打爆。
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			metrics.HTTPInflightRequests.Inc()
			defer metrics.HTTPInflightRequests.Dec()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).
				Inc()
			metrics.HTTPRequestDurationSeconds.
				WithLabelValues(method, route).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
