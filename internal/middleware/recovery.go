package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
)

// NewRecoveryMiddleware はハンドラー内のpanicを捕捉して500 INTERNAL_ERRORを返す。
// ログにはchiのルートパターンと、判明していれば食事の所有者user_idを残す。
func NewRecoveryMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				args := []any{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						args = append(args, slog.String("route", pattern))
					}
				}
				if userID := panickedUserID(r); userID != "" {
					args = append(args, slog.String("user_id", userID))
				}
				args = append(args, slog.String("stack", string(debug.Stack())))
				logger.ErrorContext(r.Context(), "panic recovered", args...)
				WriteInternalServerError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// panickedUserID はセッションミドルウェアがrequestInfoへ記録したユーザーIDを返す。
func panickedUserID(r *http.Request) string {
	if info, ok := r.Context().Value(requestInfoContextKey).(*requestInfo); ok && info.userID != "" {
		return info.userID
	}
	userID, _ := UserIDFromContext(r.Context())
	return userID
}
