package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hitoshi/dietlog/internal/model"
)

// ErrorResponseBody はdietlog APIが返すエラーボディ。
// 食事・ユーザー・認証など原因カテゴリと利用者が取るべき対処を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

func newErrorResponseBody(apiErr *model.APIError) ErrorResponseBody {
	return ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
}

// WriteErrorResponse はmodel.APIErrorをステータスコード付きで書き込む。
// ヘッダー送信後のエンコード失敗はクライアント切断とみなしログのみ残す。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(newErrorResponseBody(apiErr)); err != nil {
		slog.Warn("failed to write error response",
			slog.String("code", apiErr.Code),
			slog.Int("status", statusCode),
			slog.String("error", err.Error()),
		)
	}
}

// WriteInternalServerError は500 INTERNAL_ERRORを書き込む。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// writeRateLimitResponse は429 RATE_LIMIT_EXCEEDEDを書き込む。
func writeRateLimitResponse(w http.ResponseWriter, retryAfterSec int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, model.NewRateLimitError())
}
