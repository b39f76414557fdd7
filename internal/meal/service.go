// Package meal は食事記録の管理とアドヒアランス集計のドメインロジックを提供する。
package meal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dietlog/internal/adherence"
	"github.com/hitoshi/dietlog/internal/metrics"
	"github.com/hitoshi/dietlog/internal/model"
	"github.com/hitoshi/dietlog/internal/repository"
)

// TextChecker は利用者入力のテキストが表示可能な文字を含むかを判定するインターフェース。
// security.TextCheckerServiceが実装する。
type TextChecker interface {
	HasVisibleText(raw string) bool
}

// OperationRecorder は食事操作のメトリクス記録インターフェース。
type OperationRecorder interface {
	RecordMealOperation(operation string)
}

// Service は食事管理のサービス層。
// すべての操作は呼び出し元ユーザーが所有する食事のみを対象とする。
type Service struct {
	mealRepo  repository.MealRepository
	checker   TextChecker
	recorder  OperationRecorder
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// checkerとrecorderはnilでもよい。
func NewService(
	mealRepo repository.MealRepository,
	checker TextChecker,
	recorder OperationRecorder,
) *Service {
	return &Service{
		mealRepo:  mealRepo,
		checker:   checker,
		recorder:  recorder,
		now:       time.Now,
	}
}

// ListMeals はユーザーの食事一覧をdate降順で返す。
// 食事がない場合は空スライスを返す。
func (s *Service) ListMeals(ctx context.Context, userID string) ([]*model.Meal, error) {
	meals, err := s.mealRepo.ListByUserOrderByDate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("食事一覧の取得に失敗しました: %w", err)
	}
	if meals == nil {
		meals = []*model.Meal{}
	}
	return meals, nil
}

// GetMeal はユーザーが所有する食事を1件返す。
// 存在しない、または他ユーザーの食事の場合はMEAL_NOT_FOUNDを返す。
func (s *Service) GetMeal(ctx context.Context, userID, mealID string) (*model.Meal, error) {
	meal, err := s.mealRepo.FindByIDAndUser(ctx, mealID, userID)
	if err != nil {
		return nil, fmt.Errorf("食事の取得に失敗しました: %w", err)
	}
	if meal == nil {
		return nil, model.NewMealNotFoundError(mealID)
	}
	return meal, nil
}

// CreateMeal は食事を記録し、生成したIDを返す。
func (s *Service) CreateMeal(ctx context.Context, userID string, input model.MealInput) (string, error) {
	if err := s.checkInput(input); err != nil {
		return "", err
	}

	meal := &model.Meal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Date:        input.Date,
		OnDiet:      input.OnDiet,
		CreatedAt:   s.now(),
	}

	if err := s.mealRepo.Create(ctx, meal); err != nil {
		return "", fmt.Errorf("食事の作成に失敗しました: %w", err)
	}

	s.record(metrics.OperationCreate)
	slog.Info("meal created",
		slog.String("user_id", userID),
		slog.String("meal_id", meal.ID),
	)
	return meal.ID, nil
}

// UpdateMeal は食事の全項目を上書きする。
// 対象が存在しない場合は何も変更せずMEAL_NOT_FOUNDを返す。
func (s *Service) UpdateMeal(ctx context.Context, userID, mealID string, input model.MealInput) error {
	if err := s.checkInput(input); err != nil {
		return err
	}

	updated, err := s.mealRepo.UpdateByIDAndUser(ctx, mealID, userID, input)
	if err != nil {
		return fmt.Errorf("食事の更新に失敗しました: %w", err)
	}
	if !updated {
		return model.NewMealNotFoundError(mealID)
	}

	s.record(metrics.OperationUpdate)
	return nil
}

// DeleteMeal は食事を削除する。
// 対象が存在しない場合はMEAL_NOT_FOUNDを返す。
func (s *Service) DeleteMeal(ctx context.Context, userID, mealID string) error {
	deleted, err := s.mealRepo.DeleteByIDAndUser(ctx, mealID, userID)
	if err != nil {
		return fmt.Errorf("食事の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewMealNotFoundError(mealID)
	}

	s.record(metrics.OperationDelete)
	slog.Info("meal deleted",
		slog.String("user_id", userID),
		slog.String("meal_id", mealID),
	)
	return nil
}

// Metrics はユーザーの食事を作成順に集計したサマリーを返す。
func (s *Service) Metrics(ctx context.Context, userID string) (adherence.Summary, error) {
	meals, err := s.mealRepo.ListByUserInCreationOrder(ctx, userID)
	if err != nil {
		return adherence.Summary{}, fmt.Errorf("集計対象の食事の取得に失敗しました: %w", err)
	}
	return adherence.Compute(meals), nil
}

// checkInput は必須項目を検証する。テキストは書き換えず、そのまま保存する。
func (s *Service) checkInput(input model.MealInput) error {
	if !s.visible(input.Name) {
		return model.NewValidationError("name is required")
	}
	if !s.visible(input.Description) {
		return model.NewValidationError("description is required")
	}
	if input.Date.IsZero() {
		return model.NewValidationError("date is required")
	}
	return nil
}

func (s *Service) visible(text string) bool {
	if s.checker != nil {
		return s.checker.HasVisibleText(text)
	}
	return strings.TrimSpace(text) != ""
}

func (s *Service) record(operation string) {
	if s.recorder != nil {
		s.recorder.RecordMealOperation(operation)
	}
}
