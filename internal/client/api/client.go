// Package api はtaskman APIのHTTPクライアントを提供する。
//
// Client.Request は保存済みトークンを付与して保護APIを呼び出し、401を受けた場合は
// セッションを破棄してログイン画面へ遷移させる唯一の箇所となる。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/taskman/internal/client/redirect"
	"github.com/hitoshi/taskman/internal/client/session"
)

// DefaultTimeout はリクエスト全体のタイムアウト。
const DefaultTimeout = 10 * time.Second

// ErrAuthAborted は認証失敗（401）によりリクエストが中断されたことを表す。
// 正常な空レスポンスとは区別される。
var ErrAuthAborted = errors.New("request aborted: authentication failed")

// FetchError は2xx以外（401を除く）のレスポンスを表す。
type FetchError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" {
		return fmt.Sprintf("request failed with status %d: %s (%s)", e.StatusCode, msg, e.Detail)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, msg)
}

// Client はtaskman APIのクライアント。
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	policy     *redirect.Policy
	navigator  redirect.Navigator
	logger     *slog.Logger
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は使用するhttp.Clientを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout はリクエストのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithPolicy は401時に適用するリダイレクトポリシーを設定する。
func WithPolicy(p *redirect.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger はリクエストのデバッグログ出力先を設定する。
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New はClientを生成する。navはnilでもよく、その場合401時の遷移は行わない。
func New(baseURL string, store session.Store, nav redirect.Navigator, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
		policy:     redirect.NewPolicy(),
		navigator:  nav,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store はClientが使用するセッションストアを返す。
func (c *Client) Store() session.Store {
	return c.store
}

// Request はトークンを付与して保護APIを呼び出す。
// bodyはJSONにエンコードして送信し、2xxレスポンスはoutにデコードする（outがnilなら破棄）。
//
// 401の場合は再試行せず、セッションを破棄してExpiredとしてリダイレクトポリシーを適用し、
// ErrAuthAbortedを返す。その他の2xx以外は*FetchError、通信エラーはそのまま返す。
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	status, data, err := c.send(ctx, method, path, body, true)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.logger.Debug("authentication rejected, clearing session",
			slog.String("method", method),
			slog.String("path", path),
		)
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("failed to clear session", slog.String("error", err.Error()))
		}
		c.policy.Apply(redirect.Expired, c.navigator)
		return ErrAuthAborted
	}

	return decodeResult(status, data, out)
}

// RequestPublic はトークンを付与せずにAPIを呼び出す。401も*FetchErrorとして返す。
// ログイン・登録のような認証前のエンドポイントに使う。
func (c *Client) RequestPublic(ctx context.Context, method, path string, body, out any) error {
	status, data, err := c.send(ctx, method, path, body, false)
	if err != nil {
		return err
	}
	return decodeResult(status, data, out)
}

// send はリクエストを送信し、ステータスコードとレスポンスボディを返す。
func (c *Client) send(ctx context.Context, method, path string, body any, withToken bool) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if withToken {
		if token, ok := c.store.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, data, nil
}

// errorEnvelope はサーバーのエラーレスポンス形式。
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeResult(status int, data []byte, out any) error {
	if status < 200 || status > 299 {
		fe := &FetchError{StatusCode: status}
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil {
			fe.Message = env.Message
			fe.Detail = env.Error
		}
		return fe
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
