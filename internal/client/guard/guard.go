// Package guard は保護された画面の表示前に認証状態を確認する。
package guard

import (
	"context"

	"github.com/hitoshi/taskman/internal/client/api"
	"github.com/hitoshi/taskman/internal/client/redirect"
)

// StatusResolver は現在の認証状態を判定する。
type StatusResolver interface {
	Resolve(ctx context.Context) api.Status
}

// View は保護された画面の各状態での描画。
// Loadingは判定中に一度だけ呼ばれ、その後AuthenticatedかDeniedのどちらか一方が呼ばれる。
type View struct {
	Loading       func()
	Authenticated func(ctx context.Context, userID string) error
	Denied        func(status api.Status)
}

// Guard は認証状態に応じて画面を描画するか、ログイン画面へ遷移させる。
type Guard struct {
	resolver StatusResolver
	policy   *redirect.Policy
}

// New はGuardを生成する。policyがnilの場合は既定のPolicyを使う。
func New(resolver StatusResolver, policy *redirect.Policy) *Guard {
	if policy == nil {
		policy = redirect.NewPolicy()
	}
	return &Guard{resolver: resolver, policy: policy}
}

// Render は認証状態を判定し、viewを描画する。
// Expired・NoTokenの場合はnavでリダイレクトポリシーを適用する。
// 判定結果と、Authenticatedの描画が返したエラーを返す。
func (g *Guard) Render(ctx context.Context, nav redirect.Navigator, view View) (api.Status, error) {
	if view.Loading != nil {
		view.Loading()
	}

	status := g.resolver.Resolve(ctx)
	if status.Kind == api.KindAuthenticated {
		if view.Authenticated == nil {
			return status, nil
		}
		return status, view.Authenticated(ctx, status.UserID)
	}

	// VerificationFailedはポリシー上の理由を持たず、遷移しない
	g.policy.Apply(status.Reason(), nav)
	if view.Denied != nil {
		view.Denied(status)
	}
	return status, nil
}
