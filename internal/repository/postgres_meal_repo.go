package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/dietlog/internal/model"
)

// mealColumns はmealsテーブルのSELECT対象カラム。scanMealの順序と一致させること。
const mealColumns = `id, user_id, name, description, date, on_diet, created_at`

// PostgresMealRepo はPostgreSQLを使用した食事リポジトリ。
type PostgresMealRepo struct {
	db *sql.DB
}

// NewPostgresMealRepo はPostgresMealRepoを生成する。
func NewPostgresMealRepo(db *sql.DB) *PostgresMealRepo {
	return &PostgresMealRepo{db: db}
}

// Create は食事を作成する。
// 作成順はseqカラム（BIGSERIAL）で記録される。
func (r *PostgresMealRepo) Create(ctx context.Context, meal *model.Meal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO meals (id, user_id, name, description, date, on_diet, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		meal.ID, meal.UserID, meal.Name, meal.Description, meal.Date, meal.OnDiet, meal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("食事の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByIDAndUser は所有者を条件に食事を取得する。見つからない場合はnilを返す。
func (r *PostgresMealRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Meal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	meal, err := scanMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("食事の取得に失敗しました: %w", err)
	}
	return meal, nil
}

// ListByUserOrderByDate はユーザーの食事一覧をdate降順で返す。
// dateが同一の場合は後から作成されたものを先に返す。
func (r *PostgresMealRepo) ListByUserOrderByDate(ctx context.Context, userID string) ([]*model.Meal, error) {
	return r.list(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE user_id = $1 ORDER BY date DESC, seq DESC`,
		userID,
	)
}

// ListByUserInCreationOrder はユーザーの食事一覧を作成順（seq昇順）で返す。
// dateは重複・逆順があり得るため、連続記録の集計には必ずこちらを使う。
func (r *PostgresMealRepo) ListByUserInCreationOrder(ctx context.Context, userID string) ([]*model.Meal, error) {
	return r.list(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE user_id = $1 ORDER BY seq ASC`,
		userID,
	)
}

func (r *PostgresMealRepo) list(ctx context.Context, query, userID string) ([]*model.Meal, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("食事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var meals []*model.Meal
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("食事のスキャンに失敗しました: %w", err)
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("食事一覧の走査に失敗しました: %w", err)
	}
	return meals, nil
}

// UpdateByIDAndUser は所有者を条件に食事を上書き更新する。
// 存在確認と更新を単一のUPDATE文で行い、影響行数で有無を判定する。
func (r *PostgresMealRepo) UpdateByIDAndUser(ctx context.Context, id, userID string, input model.MealInput) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE meals SET name = $1, description = $2, date = $3, on_diet = $4
		 WHERE id = $5 AND user_id = $6`,
		input.Name, input.Description, input.Date, input.OnDiet, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("食事の更新に失敗しました: %w", err)
	}
	return affected(result)
}

// DeleteByIDAndUser は所有者を条件に食事を削除する。
func (r *PostgresMealRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM meals WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("食事の削除に失敗しました: %w", err)
	}
	return affected(result)
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(s rowScanner) (*model.Meal, error) {
	meal := &model.Meal{}
	if err := s.Scan(
		&meal.ID, &meal.UserID, &meal.Name, &meal.Description,
		&meal.Date, &meal.OnDiet, &meal.CreatedAt,
	); err != nil {
		return nil, err
	}
	return meal, nil
}

func affected(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ MealRepository = (*PostgresMealRepo)(nil)
