package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dietlog/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func decodeLogEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	return entry
}

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	handler := NewLoggingMiddleware(newTestLogger(&buf))(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meals", nil))

	entry := decodeLogEntry(t, &buf)
	if entry["msg"] != "http_request" {
		t.Errorf("msg = %v, want http_request", entry["msg"])
	}
	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/meals" {
		t.Errorf("path = %v, want /meals", entry["path"])
	}
	if status, _ := entry["status"].(float64); status != 200 {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if d, ok := entry["duration_ms"].(float64); !ok || d < 0 {
		t.Errorf("duration_ms = %v, want >= 0", entry["duration_ms"])
	}
	if _, ok := entry["user_id"]; ok {
		t.Errorf("user_id should be omitted for anonymous request, got %v", entry["user_id"])
	}
}

// セッションミドルウェアが内側で解決したユーザーIDもログに含まれる。
func TestLoggingMiddleware_IncludesUserIDResolvedDownstream(t *testing.T) {
	var buf bytes.Buffer
	chain := NewLoggingMiddleware(newTestLogger(&buf))(
		NewSessionMiddleware(tokenResolver())(okHandler()),
	)

	req := httptest.NewRequest(http.MethodGet, "/meals", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-token"})
	chain.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogEntry(t, &buf)
	if entry["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", entry["user_id"])
	}
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusCreated, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusConflict, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meals", nil))

			entry := decodeLogEntry(t, &buf)
			if status := int(entry["status"].(float64)); status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
		})
	}
}

// chiのルートパターンを記録し、パス中の食事IDはrouteに含めない。
func TestLoggingMiddleware_RecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(NewLoggingMiddleware(newTestLogger(&buf)))
	r.Get("/meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meals/123", nil))

	entry := decodeLogEntry(t, &buf)
	if entry["route"] != "/meals/{id}" {
		t.Errorf("route = %v, want /meals/{id}", entry["route"])
	}
	if entry["path"] != "/meals/123" {
		t.Errorf("path = %v, want /meals/123", entry["path"])
	}
}

func TestLoggingMiddleware_ImplicitWriteRecords200(t *testing.T) {
	var buf bytes.Buffer
	handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entry := decodeLogEntry(t, &buf)
	if status := int(entry["status"].(float64)); status != 200 {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestRecoveryMiddleware_PanicReturnsUnifiedError(t *testing.T) {
	var buf bytes.Buffer
	handler := NewRecoveryMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meals", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
	if body.Category != "system" {
		t.Errorf("category = %q, want %q", body.Category, "system")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
}

func TestRecoveryMiddleware_LogsRouteAndOwner(t *testing.T) {
	var accessBuf, panicBuf bytes.Buffer

	r := chi.NewRouter()
	r.Use(NewLoggingMiddleware(newTestLogger(&accessBuf)))
	r.Use(NewRecoveryMiddleware(newTestLogger(&panicBuf)))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), "user-42")))
		})
	})
	r.Delete("/meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("delete failed")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/meals/meal-7", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	entry := decodeLogEntry(t, &panicBuf)
	if entry["msg"] != "panic recovered" {
		t.Errorf("msg = %v, want %q", entry["msg"], "panic recovered")
	}
	if entry["route"] != "/meals/{id}" {
		t.Errorf("route = %v, want %q", entry["route"], "/meals/{id}")
	}
	if entry["user_id"] != "user-42" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "user-42")
	}
	if entry["panic"] != "delete failed" {
		t.Errorf("panic = %v, want %q", entry["panic"], "delete failed")
	}

	access := decodeLogEntry(t, &accessBuf)
	if status := int(access["status"].(float64)); status != http.StatusInternalServerError {
		t.Errorf("access log status = %d, want %d", status, http.StatusInternalServerError)
	}
}
