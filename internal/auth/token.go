package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はTTL未指定時のトークン有効期間。
const DefaultTokenTTL = time.Hour

var (
	// ErrMissingSecret は署名鍵が未設定の場合に返される。
	// 未署名トークンを発行しないよう、起動を中止させる。
	ErrMissingSecret = errors.New("token signing secret is not configured")

	// ErrInvalidToken はトークン検証に失敗した場合に返される。
	// 署名不一致・形式不正・期限切れのいずれでもこのエラーのみを返す。
	ErrInvalidToken = errors.New("token is invalid or expired")
)

// TokenVerifier はトークン検証のインターフェース。
// 認証ミドルウェアが必要とする最小限の契約。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(subjectID string, ttl time.Duration) (string, error)
}

// TokenCodec はHS256署名付きの期限付きIDトークンを発行・検証する。
// 秘密鍵は起動後に変更されないため、並行リクエスト間でロックなしに共有できる。
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
// secretが空の場合はErrMissingSecretを返す。
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenCodec{secret: key, now: time.Now}, nil
}

// Issue はsubjectIDを埋め込んだトークンを発行する。
// 有効期限は now + ttl。ttlが0以下の場合はDefaultTokenTTLを使用する。
func (c *TokenCodec) Issue(subjectID string, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("subject ID is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、サブジェクトIDを返す。
// 失敗理由は呼び出し元に区別させず、常にErrInvalidTokenを返す。
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// jwtはnow < expのみを有効とするため、1ns戻してnow <= expを有効にする
		jwt.WithTimeFunc(func() time.Time { return c.now().Add(-time.Nanosecond) }),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

var (
	_ TokenVerifier = (*TokenCodec)(nil)
	_ TokenIssuer   = (*TokenCodec)(nil)
)
