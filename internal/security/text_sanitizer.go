// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザーが入力したタスクとカテゴリのテキストをサニタイズする。
// bluemondayの許可リストベースのポリシーで、説明文には安全なタグのみを通過させ、
// タイトルやカテゴリ名からはすべてのタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// タスク・カテゴリの保存前に使用される。
type TextSanitizer interface {
	// SanitizeRich は説明文向けに限定的なHTMLを残してサニタイズする。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを通過させる。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeRich(raw string) string

	// SanitizePlain はタイトル・カテゴリ名向けにすべてのタグを除去し、
	// 前後の空白を取り除いたプレーンテキストを返す。
	SanitizePlain(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーは生成後に変更しないため、並行利用できる。
type textSanitizer struct {
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	p := bluemonday.NewPolicy()

	// script, iframe, style等は許可リストに含めないことで自動的に除去される
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &textSanitizer{
		rich:   p,
		strict: bluemonday.StrictPolicy(),
	}
}

// SanitizeRich は説明文をサニタイズする。
func (s *textSanitizer) SanitizeRich(raw string) string {
	return strings.TrimSpace(s.rich.Sanitize(raw))
}

// SanitizePlain はタグを除去したプレーンテキストを返す。
// StrictPolicyがエスケープした文字実体参照は元に戻す（JSONで返すため）。
func (s *textSanitizer) SanitizePlain(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}
