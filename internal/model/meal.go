// Package model はドメインモデルを定義する。
package model

import "time"

// Meal はユーザーが記録した食事を表す。
// 所有者（UserID）は作成後に変更されない。
type Meal struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Date        time.Time
	OnDiet      bool
	CreatedAt   time.Time
}

// MealInput は食事の作成・更新で受け付ける項目。
// 更新時は全項目が無条件に上書きされる。
type MealInput struct {
	Name        string
	Description string
	Date        time.Time
	OnDiet      bool
}
