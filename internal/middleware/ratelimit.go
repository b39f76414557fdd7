package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate       rate.Limit    // 食事API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst      int           // 食事API全般のバーストサイズ
	RegistrationRate  rate.Limit    // ユーザー登録のレート（req/sec）。10/60
	RegistrationBurst int           // ユーザー登録のバーストサイズ
	CleanupInterval   time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 食事API 120 req/min/user、ユーザー登録 10 req/min/IP。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return NewRateLimiterConfig(120, 10)
}

// NewRateLimiterConfig は1分あたりのリクエスト数からレート制限設定を生成する。
func NewRateLimiterConfig(generalPerMinute, registrationPerMinute int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:       rate.Limit(float64(generalPerMinute) / 60.0),
		GeneralBurst:      generalPerMinute,
		RegistrationRate:  rate.Limit(float64(registrationPerMinute) / 60.0),
		RegistrationBurst: registrationPerMinute,
		CleanupInterval:   5 * time.Minute,
	}
}

// keyedLimiter はキー（ユーザーIDまたはクライアントIP）ごとのリミッター集合。
type keyedLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.RWMutex
	limiters map[string]*limiterEntry
}

// limiterEntry はレートリミッターと最終アクセス時刻を保持する。
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newKeyedLimiter(limit rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
	}
}

// get はキーに対応するリミッターを取得または作成する。
func (k *keyedLimiter) get(key string) *rate.Limiter {
	k.mu.RLock()
	e, exists := k.limiters[key]
	k.mu.RUnlock()

	if exists {
		k.mu.Lock()
		e.lastAccess = time.Now()
		k.mu.Unlock()
		return e.limiter
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	// ダブルチェック
	if e, exists := k.limiters[key]; exists {
		e.lastAccess = time.Now()
		return e.limiter
	}

	limiter := rate.NewLimiter(k.limit, k.burst)
	k.limiters[key] = &limiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

// evict は最終アクセスがttlより古いエントリを削除する。
func (k *keyedLimiter) evict(now time.Time, ttl time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, e := range k.limiters {
		if now.Sub(e.lastAccess) > ttl {
			delete(k.limiters, key)
		}
	}
}

func (k *keyedLimiter) count() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.limiters)
}

// RateLimiter はレート制限を管理する。
// 認証済みの食事APIはユーザー単位、未認証のユーザー登録はクライアントIP単位で制限する。
type RateLimiter struct {
	config       RateLimiterConfig
	general      *keyedLimiter
	registration *keyedLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:       config,
		general:      newKeyedLimiter(config.GeneralRate, config.GeneralBurst),
		registration: newKeyedLimiter(config.RegistrationRate, config.RegistrationBurst),
		stopCh:       make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。複数回呼び出してもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware は食事APIのレート制限ミドルウェアを返す。
// リクエストコンテキストにユーザーIDが含まれている必要がある（SessionMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteInternalServerError(w)
				return
			}

			if !rl.general.get(userID).Allow() {
				writeRateLimitResponse(w, retryAfterSeconds(rl.config.GeneralRate))
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RegistrationMiddleware はユーザー登録のレート制限ミドルウェアを返す。
// 登録時点ではユーザーが存在しないため、クライアントIPをキーにする。
func (rl *RateLimiter) RegistrationMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !rl.registration.get(ip).Allow() {
				writeRateLimitResponse(w, retryAfterSeconds(rl.config.RegistrationRate))
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("limit_type", "registration"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されている食事APIリミッターのエントリ数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// RegistrationLimiterCount は現在管理されているユーザー登録リミッターのエントリ数を返す。
func (rl *RateLimiter) RegistrationLimiterCount() int {
	return rl.registration.count()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()
	rl.general.evict(now, ttl)
	rl.registration.evict(now, ttl)
}

// clientIP はRemoteAddrからポートを除いたアドレスを返す。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds はトークンが1つ補充されるまでの推定秒数を返す（最小1秒）。
func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 {
		return 1
	}
	sec := int(math.Ceil(1.0 / float64(r)))
	if sec < 1 {
		return 1
	}
	return sec
}
