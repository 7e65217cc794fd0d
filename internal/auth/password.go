package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost はbcryptのデフォルトコスト（2^10ラウンド）。
const DefaultHashCost = 10

// MaxPasswordBytes はbcryptが扱える平文パスワードの最大バイト数。
const MaxPasswordBytes = 72

// ErrPasswordTooLong は平文パスワードがMaxPasswordBytesを超える場合に返される。
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher はソルト付き一方向ハッシュによる資格情報の生成と照合を行う。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costがbcryptの許容範囲外の場合はDefaultHashCostを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードからソルト付きダイジェストを生成する。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードとダイジェストを照合する。
// 不一致や不正なダイジェストでもエラーにはせず、falseを返す。
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
