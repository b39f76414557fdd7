package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dietlog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder // nilの場合は記録しない

	// ユーザー
	UserService UserServiceInterface
	UserConfig  UserHandlerConfig

	// 食事
	MealService MealServiceInterface

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler // nilの場合は/metricsを公開しない
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Metrics → Recovery → SecurityHeaders → CORS
//	  /meals/*: → Session → RateLimit(General)
//	  POST /users: → RateLimit(Registration)
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	userHandler := NewUserHandler(deps.UserService, deps.UserConfig)
	mealHandler := NewMealHandler(deps.MealService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// POST /users - ユーザー登録（IP単位のレート制限）
	r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/users", userHandler.Register)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Route("/meals", func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/", mealHandler.ListMeals)
		r.Post("/", mealHandler.CreateMeal)

		// /metricsは/{id}より優先してマッチする
		r.Get("/metrics", mealHandler.Metrics)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", mealHandler.GetMeal)
			r.Put("/", mealHandler.UpdateMeal)
			r.Delete("/", mealHandler.DeleteMeal)
		})
	})

	return r
}
