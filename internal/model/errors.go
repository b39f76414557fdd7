// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, meal, user, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeMealNotFound        = "MEAL_NOT_FOUND"
	ErrCodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	ErrCodeSessionAlreadyBound = "SESSION_ALREADY_BOUND"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
)

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ユーザー登録を行い、発行されたセッションでアクセスしてください。",
	}
}

// NewMealNotFoundError は食事未検出エラーを生成する。
func NewMealNotFoundError(mealID string) *APIError {
	return &APIError{
		Code:     ErrCodeMealNotFound,
		Message:  fmt.Sprintf("指定された食事が見つかりません: %s", mealID),
		Category: "meal",
		Action:   "食事IDを確認してください。",
	}
}

// NewUserAlreadyExistsError はユーザー名重複エラーを生成する。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserAlreadyExists,
		Message:  "User already exists",
		Category: "user",
		Action:   "別のユーザー名で登録してください。",
	}
}

// NewSessionAlreadyBoundError は提示されたセッションが既に別ユーザーに紐付いている場合のエラーを生成する。
func NewSessionAlreadyBoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionAlreadyBound,
		Message:  "このセッションは既に別のユーザーに紐付いています。",
		Category: "user",
		Action:   "Cookieを削除してから再度登録してください。",
	}
}

// NewRateLimitError はレート制限超過エラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
