// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// SessionIDは登録時に一度だけ紐付けられ、以降は変更されない。
type User struct {
	ID        string
	Name      string
	Email     string
	SessionID string
	CreatedAt time.Time
}

// Session はユーザー登録時に発行（または再利用）されるセッショントークンを表す。
// ExpiresAtはCookieの有効期限であり、サーバー側では失効させない。
type Session struct {
	ID        string
	ExpiresAt time.Time
	Issued    bool // 新規発行の場合true、既存トークンを再利用した場合false
}
