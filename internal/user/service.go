// Package user はユーザー登録のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dietlog/internal/model"
	"github.com/hitoshi/dietlog/internal/repository"
)

// SessionIssuer はセッショントークンの発行インターフェース。
// auth.Serviceが実装する。
type SessionIssuer interface {
	IssueOrReuseSession(existingToken string) (*model.Session, error)
}

// RegistrationRecorder は登録結果のメトリクス記録インターフェース。
type RegistrationRecorder interface {
	RecordUserRegistered()
	RecordRegistrationConflict()
}

// RegisterResult はRegisterの戻り値。
type RegisterResult struct {
	User    *model.User
	Session *model.Session
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	sessions SessionIssuer
	recorder RegistrationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	sessions SessionIssuer,
	recorder RegistrationRecorder,
) *Service {
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
		recorder: recorder,
	}
}

// Register はユーザーを登録し、セッショントークンを紐付ける。
// 既存トークンが提示された場合はそれを再利用し、なければ新規発行する。
// 表示名が既に使われている場合は何も作成せずUSER_ALREADY_EXISTSを返す。
// 提示されたトークンが別ユーザーに紐付いている場合はSESSION_ALREADY_BOUNDを返す。
func (s *Service) Register(ctx context.Context, existingToken, name, email string) (*RegisterResult, error) {
	session, err := s.sessions.IssueOrReuseSession(existingToken)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	// 1. 表示名の重複確認
	existing, err := s.userRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	if existing != nil {
		s.recordConflict()
		slog.Info("registration rejected: name already taken", slog.String("name", name))
		return nil, model.NewUserAlreadyExistsError()
	}

	// 2. 再利用トークンが既に別ユーザーに紐付いていないか確認
	if !session.Issued {
		bound, err := s.userRepo.FindBySessionID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to find user by session: %w", err)
		}
		if bound != nil {
			s.recordConflict()
			slog.Info("registration rejected: session already bound",
				slog.String("bound_user_id", bound.ID),
			)
			return nil, model.NewSessionAlreadyBoundError()
		}
	}

	// 3. ユーザーを作成
	newUser := &model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		SessionID: session.ID,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		// 確認後に並行登録された場合は一意制約で検出する
		if errors.Is(err, repository.ErrDuplicate) {
			s.recordConflict()
			return nil, model.NewUserAlreadyExistsError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordUserRegistered()
	}
	slog.Info("new user registered",
		slog.String("user_id", newUser.ID),
		slog.Bool("session_issued", session.Issued),
	)

	return &RegisterResult{User: newUser, Session: session}, nil
}

func (s *Service) recordConflict() {
	if s.recorder != nil {
		s.recorder.RecordRegistrationConflict()
	}
}
