// Package redirect は認証状態の分類結果をログイン画面への遷移に変換する。
//
// 遷移先は "/login?message=<notice>[&redirect=<path>]" の形式で、
// 既にログイン画面にいる場合は遷移しない（リダイレクトループ防止）。
package redirect

import (
	"net/url"
	"strings"
)

// Reason は遷移を引き起こした理由。
type Reason string

const (
	// Expired はトークンが無効・期限切れ、またはサーバーで検証できなかったことを表す。
	Expired Reason = "expired"
	// NoToken はトークンを保持していないことを表す。
	NoToken Reason = "no_token"
)

// ログイン画面の message クエリパラメータに指定する通知。
const (
	NoticeSessionExpired   = "session_expired"
	NoticeLoginRequired    = "login_required"
	NoticeNoToken          = "no_token"
	NoticeLogoutSuccessful = "logout_successful"
)

const (
	// DefaultLoginPath はログイン画面のパス。
	DefaultLoginPath = "/login"
	// DefaultTarget はログイン後の既定の遷移先。
	DefaultTarget = "/dashboard"
)

var noticeTexts = map[string]string{
	NoticeSessionExpired:   "Your session has expired. Please log in again.",
	NoticeLoginRequired:    "Please log in to continue.",
	NoticeNoToken:          "No authentication token found. Please log in.",
	NoticeLogoutSuccessful: "You have been logged out.",
}

// NoticeText は通知コードに対応するユーザー向けメッセージを返す。未知のコードは空文字。
func NoticeText(notice string) string {
	return noticeTexts[notice]
}

// Navigator は現在の履歴エントリを置き換えて遷移する能力。
type Navigator interface {
	Replace(url string)
}

// Locator は現在のパスを報告できるNavigatorが実装する。
// 実装していないNavigatorではループ防止の判定を行わない。
type Locator interface {
	CurrentPath() string
}

// Policy は理由ごとの遷移先を決める。
type Policy struct {
	// LoginPath はログイン画面のパス。空の場合はDefaultLoginPath。
	LoginPath string
	// PublicPaths は保護されていない画面のパス。
	// 現在のパスがここに含まれる場合は redirect パラメータを付けない。
	PublicPaths []string
}

// NewPolicy は既定のログイン画面と公開画面（"/", "/register"）を持つPolicyを生成する。
func NewPolicy() *Policy {
	return &Policy{
		LoginPath:   DefaultLoginPath,
		PublicPaths: []string{"/", "/register"},
	}
}

func (p *Policy) loginPath() string {
	if p.LoginPath == "" {
		return DefaultLoginPath
	}
	return p.LoginPath
}

// Apply はreasonに応じてnavでログイン画面へ遷移し、遷移したかどうかを返す。
// 未定義のreasonやログイン画面上での呼び出しでは何もしない。
func (p *Policy) Apply(reason Reason, nav Navigator) bool {
	var notice string
	switch reason {
	case Expired:
		notice = NoticeSessionExpired
	case NoToken:
		notice = NoticeLoginRequired
	default:
		return false
	}
	if nav == nil {
		return false
	}

	var current string
	if loc, ok := nav.(Locator); ok {
		current = pathOnly(loc.CurrentPath())
		if current == p.loginPath() {
			return false
		}
	}

	target := ""
	if p.isProtected(current) {
		target = current
	}
	nav.Replace(p.LoginURL(notice, target))
	return true
}

// LoginURL はログイン画面のURLを組み立てる。redirectが空の場合は付与しない。
func (p *Policy) LoginURL(notice, redirect string) string {
	q := url.Values{}
	if notice != "" {
		q.Set("message", notice)
	}
	if redirect != "" {
		q.Set("redirect", redirect)
	}
	if len(q) == 0 {
		return p.loginPath()
	}
	return p.loginPath() + "?" + q.Encode()
}

func (p *Policy) isProtected(path string) bool {
	if path == "" || path == p.loginPath() {
		return false
	}
	for _, public := range p.PublicPaths {
		if path == public {
			return false
		}
	}
	return true
}

// Target はログイン画面のクエリから遷移先を取り出す。
// 未指定やサイト外を指すURLの場合はDefaultTargetを返す。
func Target(query url.Values) string {
	target := query.Get("redirect")
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return DefaultTarget
	}
	return target
}

func pathOnly(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
