package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/dietlog/internal/middleware"
	"github.com/hitoshi/dietlog/internal/model"
	"github.com/hitoshi/dietlog/internal/user"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error)
}

func (m *mockUserService) Register(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, existingToken, name, email)
	}
	return nil, errors.New("not implemented")
}

var testUserConfig = UserHandlerConfig{SessionMaxAge: 604800}

func registerRequestWith(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- POST /users テスト ---

func TestUserHandler_Register_IssuesCookie(t *testing.T) {
	expires := time.Now().Add(7 * 24 * time.Hour)
	svc := &mockUserService{
		registerFn: func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
			if existingToken != "" {
				t.Errorf("existingToken = %q, want empty", existingToken)
			}
			if name != "Gabriel Santos" || email != "gabriel@example.com" {
				t.Errorf("unexpected args: name=%q email=%q", name, email)
			}
			return &user.RegisterResult{
				User:    &model.User{ID: "user-1", Name: name, Email: email, SessionID: "new-token"},
				Session: &model.Session{ID: "new-token", ExpiresAt: expires, Issued: true},
			}, nil
		},
	}
	h := NewUserHandler(svc, testUserConfig)

	w := httptest.NewRecorder()
	h.Register(w, registerRequestWith(`{"name":" Gabriel Santos ","email":"gabriel@example.com"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"message":"User created"`) {
		t.Errorf("body = %s, want message", w.Body.String())
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != middleware.SessionCookieName || c.Value != "new-token" {
		t.Errorf("cookie = %s=%s, want sessionId=new-token", c.Name, c.Value)
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
	if c.MaxAge != 604800 {
		t.Errorf("cookie MaxAge = %d, want 604800", c.MaxAge)
	}
	if !c.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", c.SameSite)
	}
}

func TestUserHandler_Register_ReusedToken_NoCookie(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
			if existingToken != "cookie-token" {
				t.Errorf("existingToken = %q, want cookie-token", existingToken)
			}
			return &user.RegisterResult{
				User:    &model.User{ID: "user-1"},
				Session: &model.Session{ID: existingToken},
			}, nil
		},
	}
	h := NewUserHandler(svc, testUserConfig)

	req := registerRequestWith(`{"name":"alice","email":"alice@example.com"}`)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "cookie-token"})
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Errorf("reused token should not set a cookie, got %v", w.Result().Cookies())
	}
}

// 保存できない長さのCookieトークンはサービスに渡さず400を返す。
func TestUserHandler_Register_OversizedCookieToken_ValidationError(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"上限ちょうどは受け付ける", strings.Repeat("a", 128), http.StatusCreated},
		{"上限超過は拒否する", strings.Repeat("a", 200), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockUserService{
				registerFn: func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
					called = true
					return &user.RegisterResult{
						User:    &model.User{ID: "user-1"},
						Session: &model.Session{ID: existingToken},
					}, nil
				},
			}
			h := NewUserHandler(svc, testUserConfig)

			req := registerRequestWith(`{"name":"alice","email":"alice@example.com"}`)
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tt.token})
			w := httptest.NewRecorder()
			h.Register(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest {
				if called {
					t.Error("service should not be called for an oversized token")
				}
				resp := parseAPIErrorResponse(t, w)
				if resp.Code != model.ErrCodeValidation {
					t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeValidation)
				}
			}
		})
	}
}

func TestUserHandler_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed json", `{"name":`},
		{"missing name", `{"email":"a@example.com"}`},
		{"blank name", `{"name":"   ","email":"a@example.com"}`},
		{"missing email", `{"name":"alice"}`},
		{"invalid email", `{"name":"alice","email":"not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				registerFn: func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
					t.Fatal("service should not be called")
					return nil, nil
				},
			}
			h := NewUserHandler(svc, testUserConfig)

			w := httptest.NewRecorder()
			h.Register(w, registerRequestWith(tt.body))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if body := parseAPIErrorResponse(t, w); body.Code != model.ErrCodeValidation {
				t.Errorf("code = %q, want %q", body.Code, model.ErrCodeValidation)
			}
		})
	}
}

func TestUserHandler_Register_Conflicts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"name taken", model.NewUserAlreadyExistsError(), model.ErrCodeUserAlreadyExists},
		{"session bound", model.NewSessionAlreadyBoundError(), model.ErrCodeSessionAlreadyBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				registerFn: func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
					return nil, tt.err
				},
			}
			h := NewUserHandler(svc, testUserConfig)

			w := httptest.NewRecorder()
			h.Register(w, registerRequestWith(`{"name":"alice","email":"alice@example.com"}`))

			if w.Code != http.StatusConflict {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
			}
			if body := parseAPIErrorResponse(t, w); body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if len(w.Result().Cookies()) != 0 {
				t.Error("no cookie should be set on conflict")
			}
		})
	}
}

func TestUserHandler_Register_StoreError_Returns500(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, existingToken, name, email string) (*user.RegisterResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := NewUserHandler(svc, testUserConfig)

	w := httptest.NewRecorder()
	h.Register(w, registerRequestWith(`{"name":"alice","email":"alice@example.com"}`))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := parseAPIErrorResponse(t, w)
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
	if strings.Contains(body.Message, "connection refused") {
		t.Error("internal error details must not leak to the client")
	}
}
