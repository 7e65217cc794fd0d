package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/client/redirect"
)

// StatusKind は認証状態の種別。
type StatusKind int

const (
	// KindNoToken はトークンを保持していない状態。
	KindNoToken StatusKind = iota
	// KindAuthenticated はサーバーがトークンを有効と判定した状態。
	KindAuthenticated
	// KindExpired はトークンが拒否された、またはサーバーに到達できなかった状態。
	KindExpired
	// KindVerificationFailed はサーバーが成功を返したが応答を解釈できなかった状態。
	KindVerificationFailed
)

func (k StatusKind) String() string {
	switch k {
	case KindNoToken:
		return "no_token"
	case KindAuthenticated:
		return "authenticated"
	case KindExpired:
		return "expired"
	case KindVerificationFailed:
		return "verification_failed"
	}
	return "unknown"
}

// Status は認証状態の判定結果。UserIDはKindAuthenticatedの場合のみ設定される。
type Status struct {
	Kind   StatusKind
	UserID string
}

// Authenticated はuserIDとして認証済みのStatusを返す。
func Authenticated(userID string) Status {
	return Status{Kind: KindAuthenticated, UserID: userID}
}

var (
	NoToken            = Status{Kind: KindNoToken}
	Expired            = Status{Kind: KindExpired}
	VerificationFailed = Status{Kind: KindVerificationFailed}
)

func (s Status) String() string {
	if s.Kind == KindAuthenticated {
		return "authenticated(" + s.UserID + ")"
	}
	return s.Kind.String()
}

// Reason はリダイレクトポリシーに渡す理由を返す。
// VerificationFailedはポリシーに定義されていない理由となり、遷移しない。
func (s Status) Reason() redirect.Reason {
	switch s.Kind {
	case KindExpired:
		return redirect.Expired
	case KindNoToken:
		return redirect.NoToken
	}
	return redirect.Reason(s.Kind.String())
}

// CheckPath はトークン検証エンドポイント。
const CheckPath = "/api/auth/check"

type checkResponse struct {
	Success bool `json:"success"`
	User    *struct {
		UserID string `json:"userId"`
	} `json:"user"`
}

// Resolver はサーバーに問い合わせて現在のトークンの状態を判定する。
type Resolver struct {
	client *Client
}

// NewResolver はResolverを生成する。
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve は現在の認証状態を返す。
//
// トークンが無ければ通信せずにNoTokenを返す。サーバーが拒否した場合、2xx以外の場合、
// 通信エラー（タイムアウトを含む）の場合はセッションを破棄してExpiredを返す。
func (r *Resolver) Resolve(ctx context.Context) Status {
	c := r.client
	if _, ok := c.store.Get(); !ok {
		return NoToken
	}

	status, data, err := c.send(ctx, http.MethodGet, CheckPath, nil, true)
	if err != nil || status < 200 || status > 299 {
		attrs := []any{slog.Int("status", status)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		c.logger.Debug("token check failed", attrs...)
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Warn("failed to clear session", slog.String("error", clearErr.Error()))
		}
		return Expired
	}

	var body checkResponse
	if err := json.Unmarshal(data, &body); err != nil || body.User == nil || body.User.UserID == "" {
		return VerificationFailed
	}
	return Authenticated(body.User.UserID)
}
