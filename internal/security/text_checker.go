// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextChecker は食事名・説明などの利用者入力が、マークアップを除いても
// 表示可能な文字を含むかを判定する。入力そのものは書き換えない。
// bluemondayのStrictPolicyを使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextCheckerService は利用者入力テキストの判定インターフェースを定義する。
type TextCheckerService interface {
	// HasVisibleText はすべてのタグを除去しても空白以外の文字が残る場合にtrueを返す。
	HasVisibleText(raw string) bool
}

// textChecker はTextCheckerServiceの実装。
// bluemondayのポリシーはスレッドセーフに利用できる。
type textChecker struct {
	policy *bluemonday.Policy
}

// NewTextChecker はTextCheckerServiceの新しいインスタンスを生成する。
func NewTextChecker() *textChecker {
	return &textChecker{
		policy: bluemonday.StrictPolicy(),
	}
}

// HasVisibleText はStrictPolicyで描画した結果に空白以外の文字が残るかを返す。
// script, style等の要素は内容ごと除去されるため、それだけの入力はfalseになる。
func (c *textChecker) HasVisibleText(raw string) bool {
	return strings.TrimSpace(c.policy.Sanitize(raw)) != ""
}
