// Package auth はセッショントークンによる認証を提供する。
// パスワードは扱わず、推測不可能なトークンとユーザーを1対1で対応させる。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hitoshi/dietlog/internal/model"
)

// DefaultSessionMaxAge はセッションCookieのデフォルト有効期間（秒）。7日。
const DefaultSessionMaxAge = 7 * 24 * 60 * 60

// SessionUserFinder はセッションIDからユーザーを検索するインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type SessionUserFinder interface {
	FindBySessionID(ctx context.Context, sessionID string) (*model.User, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users  SessionUserFinder
	config ServiceConfig
	now    func() time.Time
}

// NewService はServiceを生成する。
// SessionMaxAgeが0以下の場合はDefaultSessionMaxAgeを使用する。
func NewService(users SessionUserFinder, config ServiceConfig) *Service {
	if config.SessionMaxAge <= 0 {
		config.SessionMaxAge = DefaultSessionMaxAge
	}
	return &Service{
		users:  users,
		config: config,
		now:    time.Now,
	}
}

// ResolveSession はセッショントークンからユーザーを特定する。
// トークンが空、または一致するユーザーが存在しない場合はUNAUTHORIZEDエラーを返す。
func (s *Service) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.users.FindBySessionID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by session: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// IssueOrReuseSession はセッショントークンを発行する。
// existingTokenが空でなければ存在確認をせずそのまま返す（有効性は保護された操作の時点で検証する）。
// 空の場合は暗号的に安全な乱数から新しいトークンを生成する。
func (s *Service) IssueOrReuseSession(existingToken string) (*model.Session, error) {
	expiresAt := s.now().Add(time.Duration(s.config.SessionMaxAge) * time.Second)

	if existingToken != "" {
		return &model.Session{
			ID:        existingToken,
			ExpiresAt: expiresAt,
			Issued:    false,
		}, nil
	}

	token, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	return &model.Session{
		ID:        token,
		ExpiresAt: expiresAt,
		Issued:    true,
	}, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
