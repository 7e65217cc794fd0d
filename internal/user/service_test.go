package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	updateFn         func(ctx context.Context, user *model.User) error
	deleteWithDataFn func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) DeleteWithData(ctx context.Context, id string) error {
	return m.deleteWithDataFn(ctx, id)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// fakeHasher は"hashed:"接頭辞を付けるだけのハッシャー。
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, digest string) bool  { return digest == "hashed:"+plaintext }

func existingUser() *model.User {
	return &model.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hashed:old"}
}

// --- テスト ---

// TestService_DeleteAccount は退会処理が所有データごとユーザーを削除することを検証する。
func TestService_DeleteAccount(t *testing.T) {
	var deletedID string
	userRepo := &mockUserRepo{
		deleteWithDataFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}

	svc := NewService(userRepo, fakeHasher{})

	if err := svc.DeleteAccount(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if deletedID != "user-1" {
		t.Errorf("DeleteWithData called with %q, want %q", deletedID, "user-1")
	}
}

// TestService_DeleteAccount_UserNotFound は存在しないユーザーの退会がAPIErrorになることを検証する。
func TestService_DeleteAccount_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		deleteWithDataFn: func(ctx context.Context, id string) error {
			return repository.ErrNotFound
		},
	}

	svc := NewService(userRepo, fakeHasher{})

	err := svc.DeleteAccount(context.Background(), "nonexistent-user")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("error = %v, want USER_NOT_FOUND", err)
	}
}

func TestService_DeleteAccount_RepositoryFailure(t *testing.T) {
	dbErr := errors.New("tx aborted")
	svc := NewService(&mockUserRepo{
		deleteWithDataFn: func(ctx context.Context, id string) error { return dbErr },
	}, fakeHasher{})

	if err := svc.DeleteAccount(context.Background(), "user-1"); !errors.Is(err, dbErr) {
		t.Errorf("error = %v, want wrapped %v", err, dbErr)
	}
}

func TestService_UpdateProfile(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) { return existingUser(), nil },
		updateFn: func(ctx context.Context, user *model.User) error {
			saved = user
			return nil
		},
	}
	svc := NewService(repo, fakeHasher{})

	got, err := svc.UpdateProfile(context.Background(), "user-1", model.ProfileUpdate{
		Email:           " Alice@New.example ",
		CurrentPassword: "old",
		NewPassword:     "new",
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected Update to be called")
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want unchanged", got.Username)
	}
	if got.Email != "alice@new.example" {
		t.Errorf("Email = %q, want %q", got.Email, "alice@new.example")
	}
	if got.PasswordHash != "hashed:new" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "hashed:new")
	}
}

func TestService_UpdateProfile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       model.ProfileUpdate
		updateFn func(ctx context.Context, user *model.User) error
		code     string
	}{
		{
			name: "現在のパスワードなし",
			in:   model.ProfileUpdate{NewPassword: "new"},
			code: model.ErrCodeMissingFields,
		},
		{
			name: "現在のパスワード不一致",
			in:   model.ProfileUpdate{CurrentPassword: "wrong", NewPassword: "new"},
			code: model.ErrCodeInvalidCredentials,
		},
		{
			name:     "メール重複",
			in:       model.ProfileUpdate{Email: "taken@example.com"},
			updateFn: func(ctx context.Context, user *model.User) error { return repository.ErrDuplicateEmail },
			code:     model.ErrCodeEmailTaken,
		},
		{
			name:     "ユーザー名重複",
			in:       model.ProfileUpdate{Username: "bob"},
			updateFn: func(ctx context.Context, user *model.User) error { return repository.ErrDuplicateUsername },
			code:     model.ErrCodeUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				findByIDFn: func(ctx context.Context, id string) (*model.User, error) { return existingUser(), nil },
				updateFn:   tt.updateFn,
			}
			svc := NewService(repo, fakeHasher{})

			_, err := svc.UpdateProfile(context.Background(), "user-1", tt.in)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *model.APIError, got %T: %v", err, err)
			}
			if apiErr.Code != tt.code {
				t.Errorf("error code = %q, want %q", apiErr.Code, tt.code)
			}
		})
	}
}

func TestService_GetProfile_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, fakeHasher{})

	_, err := svc.GetProfile(context.Background(), "ghost")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("error = %v, want USER_NOT_FOUND", err)
	}
}
