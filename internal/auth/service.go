// Package auth はトークンの発行・検証、パスワードハッシュ、登録・ログインを提供する。
//
// サーバーはセッションを保持しない。トークンの有効性は署名と有効期限のみで判断する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	TokenTTL time.Duration // 発行するトークンの有効期間
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	codec    *TokenCodec
	config   ServiceConfig
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	hasher *PasswordHasher,
	codec *TokenCodec,
	config ServiceConfig,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		codec:    codec,
		config:   config,
		metrics:  collector,
		now:      time.Now,
	}
}

// Register は新規ユーザーを作成し、そのユーザーのトークンを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, *model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		s.metrics.RecordAuthAttempt("register", metrics.OutcomeInvalid)
		return "", nil, model.NewMissingFieldsError()
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			s.metrics.RecordAuthAttempt("register", metrics.OutcomeInvalid)
			return "", nil, model.NewValidationError("Password must be at most 72 bytes")
		}
		s.metrics.RecordAuthAttempt("register", metrics.OutcomeError)
		return "", nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			s.metrics.RecordAuthAttempt("register", metrics.OutcomeConflict)
			return "", nil, model.NewEmailTakenError()
		case errors.Is(err, repository.ErrDuplicateUsername):
			s.metrics.RecordAuthAttempt("register", metrics.OutcomeConflict)
			return "", nil, model.NewUsernameTakenError()
		}
		s.metrics.RecordAuthAttempt("register", metrics.OutcomeError)
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		s.metrics.RecordAuthAttempt("register", metrics.OutcomeError)
		return "", nil, err
	}

	s.metrics.RecordAuthAttempt("register", metrics.OutcomeSuccess)
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return token, user, nil
}

// Login はメールアドレスとパスワードを照合し、トークンを返す。
// 未登録のメールアドレスとパスワード不一致は別のエラーで返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.metrics.RecordAuthAttempt("login", metrics.OutcomeInvalid)
		return "", model.NewMissingFieldsError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordAuthAttempt("login", metrics.OutcomeError)
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.metrics.RecordAuthAttempt("login", metrics.OutcomeNotFound)
		return "", model.NewAccountNotFoundError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordAuthAttempt("login", metrics.OutcomeInvalid)
		slog.Warn("login rejected", slog.String("user_id", user.ID))
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.issue(user.ID)
	if err != nil {
		s.metrics.RecordAuthAttempt("login", metrics.OutcomeError)
		return "", err
	}

	s.metrics.RecordAuthAttempt("login", metrics.OutcomeSuccess)
	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// Verify はトークンを検証し、サブジェクトID（ユーザーID）を返す。
// 認証ミドルウェアのTokenVerifierとして使う。
func (s *Service) Verify(token string) (string, error) {
	userID, err := s.codec.Verify(token)
	if err != nil {
		s.metrics.RecordTokenRejected()
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) issue(userID string) (string, error) {
	token, err := s.codec.Issue(userID, s.config.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	s.metrics.RecordTokenIssued()
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ TokenVerifier = (*Service)(nil)
