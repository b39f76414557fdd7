// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/dietlog/internal/model"
)

// ErrDuplicate は一意制約違反（ユーザー名またはセッションIDの重複）を表す。
var ErrDuplicate = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByName は表示名でユーザーを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)

	// FindBySessionID はセッションIDでユーザーを検索する。見つからない場合はnilを返す。
	FindBySessionID(ctx context.Context, sessionID string) (*model.User, error)

	// Create はユーザーを作成する。
	// name または session_id が既存レコードと衝突した場合は ErrDuplicate をラップして返す。
	Create(ctx context.Context, user *model.User) error
}

// MealRepository は食事データの永続化インターフェース。
// すべての検索・更新・削除は所有者（user_id）を条件に含める。
type MealRepository interface {
	// Create は食事を作成する。
	Create(ctx context.Context, meal *model.Meal) error

	// FindByIDAndUser は所有者を条件に食事を取得する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Meal, error)

	// ListByUserOrderByDate はユーザーの食事一覧をdate降順で返す。表示用。
	ListByUserOrderByDate(ctx context.Context, userID string) ([]*model.Meal, error)

	// ListByUserInCreationOrder はユーザーの食事一覧を作成順（昇順）で返す。集計用。
	ListByUserInCreationOrder(ctx context.Context, userID string) ([]*model.Meal, error)

	// UpdateByIDAndUser は所有者を条件に食事を上書き更新する。
	// 対象行が存在しない場合はfalseを返し、何も変更しない。
	UpdateByIDAndUser(ctx context.Context, id, userID string, input model.MealInput) (bool, error)

	// DeleteByIDAndUser は所有者を条件に食事を削除する。
	// 対象行が存在しない場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}
