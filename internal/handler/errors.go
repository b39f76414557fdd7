package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dietlog/internal/middleware"
	"github.com/hitoshi/dietlog/internal/model"
)

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeMealNotFound:
		return http.StatusNotFound
	case model.ErrCodeUserAlreadyExists, model.ErrCodeSessionAlreadyBound:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeValidationError は400 VALIDATION_ERRORを書き込む。
func writeValidationError(w http.ResponseWriter, reason string) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(reason))
}

// requireUserID はセッションミドルウェアが注入したユーザーIDを返す。
// 取得できない場合は401を書き込み、falseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return userID, true
}
