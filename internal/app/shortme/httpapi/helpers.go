package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/app/shortme"
)

// APIResponse 是所有 JSON 接口的统一信封。
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, APIResponse{Success: false, Message: message})
}

// respondEngineError 把引擎错误翻译成 HTTP 响应:
// 校验错误和短码冲突都是调用方的问题(400),其余一律 500 且不泄露内部细节。
func respondEngineError(c echo.Context, err error) error {
	var verr *shortme.ValidationError
	if errors.As(err, &verr) {
		return respondError(c, http.StatusBadRequest, verr.Error())
	}
	var cerr *shortme.ConflictError
	if errors.As(err, &cerr) {
		return respondError(c, http.StatusBadRequest, cerr.Error())
	}
	return respondError(c, http.StatusInternalServerError, "Internal server error")
}
