package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/app/shortme"
	"shortme.local/internal/app/shortme/stats"
	"shortme.local/internal/platform/httpmiddleware"
	"shortme.local/internal/platform/metrics"
)

// NewRedirectHandler 返回 GET /:code 的处理函数。
//
// Resolve 永不失败：解析不到就跳到哨兵错误页。点击计数与事件收集只在
// 解析成功（非哨兵）时触发，且都是 fire-and-forget，不影响跳转延迟。
// counter / collector 允许为 nil（统计子系统整体关闭时跳转照常工作）。
func NewRedirectHandler(engine *shortme.LinkEngine, counter shortme.ClickCounter, collector stats.Collector) echo.HandlerFunc {
	return func(c echo.Context) error {
		code := c.Param("code")
		req := c.Request()

		target := engine.Resolve(req.Context(), code)
		if target != shortme.SentinelTarget {
			metrics.LinkRedirects.Inc()
			if counter != nil {
				counter.Increment(req.Context(), code)
			}
			if collector != nil {
				collector.Collect(stats.ClickEvent{
					Code:      code,
					ClickedAt: time.Now(),
					IP:        httpmiddleware.ClientIP(req),
					UserAgent: req.UserAgent(),
					Referer:   req.Referer(),
				})
			}
		}

		return c.Redirect(http.StatusFound, target)
	}
}

// NewErrorPageHandler 返回哨兵错误页 GET /error：短码无效时的统一落点。
func NewErrorPageHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return respondError(c, http.StatusNotFound, "Short link not found or invalid")
	}
}
