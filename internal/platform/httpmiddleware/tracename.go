package httpmiddleware

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// TraceName 在路由匹配之后把 span 名字改成「方法 + 路由模板」。
// otelhttp 包在最外层,拿不到模板,只能叫一个笼统的名字。
func TraceName() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			span := trace.SpanFromContext(c.Request().Context())
			if span.IsRecording() && c.Path() != "" {
				span.SetName(c.Request().Method + " " + c.Path())
			}
			return next(c)
		}
	}
}
