package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/dietlog/internal/middleware"
	"github.com/hitoshi/dietlog/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Register はユーザーを登録し、セッショントークンを紐付ける。
	Register(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error)
}

// UserHandlerConfig はセッションCookieの属性設定。
type UserHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// UserHandler はユーザー登録のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	config  UserHandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, config UserHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		config:  config,
	}
}

// Register はユーザー登録を処理する。
// POST /users
// リクエストにsessionId Cookieがあればそのトークンを再利用し、なければ新規発行してCookieに設定する。
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if reason, ok := decodeAndValidate(w, r, &req); !ok {
		writeValidationError(w, reason)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeValidationError(w, "name is required")
		return
	}

	token := middleware.SessionTokenFromRequest(r)
	if !validSessionToken(token) {
		writeValidationError(w, "sessionId cookie must be at most 128 printable ASCII characters")
		return
	}

	result, err := h.service.Register(r.Context(), token, name, strings.TrimSpace(req.Email))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if result.Session.Issued {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    result.Session.ID,
			Path:     "/",
			Domain:   h.config.CookieDomain,
			MaxAge:   h.config.SessionMaxAge,
			Expires:  result.Session.ExpiresAt,
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(messageResponse{Message: "User created"})
}

// messageResponse は本文にメッセージのみを返すレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}
