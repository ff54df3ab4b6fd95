package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/app/shortme"
	"shortme.local/internal/app/shortme/clicks"
)

// createLinkRequest 是创建短链的请求体。
type createLinkRequest struct {
	LongURL         string     `json:"longUrl"`
	CustomShortCode string     `json:"customShortCode"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// linkResponse 是对外暴露的短链视图（不含内部 ID）。
type linkResponse struct {
	ShortCode string     `json:"shortCode"`
	ShortURL  string     `json:"shortUrl"`
	LongURL   string     `json:"longUrl"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Status    string     `json:"status"`
}

func toLinkResponse(baseURL string, rec *shortme.LinkRecord) linkResponse {
	return linkResponse{
		ShortCode: rec.ShortCode,
		ShortURL:  strings.TrimRight(baseURL, "/") + "/" + rec.ShortCode,
		LongURL:   rec.LongURL,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
		Status:    string(rec.Status),
	}
}

// NewCreateHandler 返回 POST /api/links 的处理函数。
func NewCreateHandler(engine *shortme.LinkEngine, baseURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createLinkRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, http.StatusBadRequest, "Invalid request body")
		}

		rec, err := engine.CreateShortLink(c.Request().Context(), req.LongURL, req.CustomShortCode, req.ExpiresAt)
		if err != nil {
			return respondEngineError(c, err)
		}
		return respondOK(c, http.StatusCreated, "Short link created", toLinkResponse(baseURL, rec))
	}
}

// NewWelcomeHandler 返回 GET /api/links 的占位响应（接口索引页）。
func NewWelcomeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return respondOK(c, http.StatusOK, "shortme link API", map[string]string{
			"create":   "POST /api/links",
			"stats":    "GET /api/links/:code/stats",
			"redirect": "GET /:code",
		})
	}
}

// NewStubHandler 返回尚未实现的管理类接口的统一占位响应。
func NewStubHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return respondError(c, http.StatusNotImplemented, "Not implemented yet")
	}
}

// linkStatsResponse 是点击统计视图：终身总数 + 当日计数。
type linkStatsResponse struct {
	ShortCode   string `json:"shortCode"`
	TotalClicks int64  `json:"totalClicks"`
	TodayClicks int64  `json:"todayClicks"`
}

// NewStatsHandler 返回 GET /api/links/:code/stats 的处理函数。
// 统计来自 Redis 计数器，键不存在按 0 返回,不区分「没点过」和「从未创建」。
func NewStatsHandler(counter *clicks.RedisCounter, logger *slog.Logger) echo.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c echo.Context) error {
		code := c.Param("code")
		ctx := c.Request().Context()

		total, err := counter.TotalClicks(ctx, code)
		if err != nil {
			logger.ErrorContext(ctx, "read total clicks", "code", code, "err", err)
			return respondError(c, http.StatusInternalServerError, "Internal server error")
		}
		today, err := counter.DailyClicks(ctx, code, time.Now())
		if err != nil {
			logger.ErrorContext(ctx, "read daily clicks", "code", code, "err", err)
			return respondError(c, http.StatusInternalServerError, "Internal server error")
		}

		return respondOK(c, http.StatusOK, "Click stats", linkStatsResponse{
			ShortCode:   code,
			TotalClicks: total,
			TodayClicks: today,
		})
	}
}
