package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (string, *model.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (string, *model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return "", nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "", nil
}

type mockUserService struct {
	getProfileFn    func(ctx context.Context, userID string) (*model.User, error)
	updateProfileFn func(ctx context.Context, userID string, in model.ProfileUpdate) (*model.User, error)
	deleteAccountFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, in model.ProfileUpdate) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockUserService) DeleteAccount(ctx context.Context, userID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(ctx, userID)
	}
	return nil
}

type mockTaskService struct {
	listFn   func(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error)
	getFn    func(ctx context.Context, userID, taskID string) (*model.Task, error)
	createFn func(ctx context.Context, userID string, in task.CreateInput) (*model.Task, error)
	updateFn func(ctx context.Context, userID, taskID string, in task.UpdateInput) (*model.Task, error)
	deleteFn func(ctx context.Context, userID, taskID string) error
}

func (m *mockTaskService) List(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, filter)
	}
	return []*model.Task{}, nil
}

func (m *mockTaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, taskID)
	}
	return nil, model.NewTaskNotFoundError(taskID)
}

func (m *mockTaskService) Create(ctx context.Context, userID string, in task.CreateInput) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockTaskService) Update(ctx context.Context, userID, taskID string, in task.UpdateInput) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, taskID, in)
	}
	return nil, nil
}

func (m *mockTaskService) Delete(ctx context.Context, userID, taskID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, taskID)
	}
	return nil
}

type mockCategoryService struct {
	listFn   func(ctx context.Context, userID string) ([]*model.Category, error)
	createFn func(ctx context.Context, userID, name, color string) (*model.Category, error)
	updateFn func(ctx context.Context, userID, categoryID string, name, color *string) (*model.Category, error)
	deleteFn func(ctx context.Context, userID, categoryID string) error
}

func (m *mockCategoryService) List(ctx context.Context, userID string) ([]*model.Category, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*model.Category{}, nil
}

func (m *mockCategoryService) Create(ctx context.Context, userID, name, color string) (*model.Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name, color)
	}
	return nil, nil
}

func (m *mockCategoryService) Update(ctx context.Context, userID, categoryID string, name, color *string) (*model.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, categoryID, name, color)
	}
	return nil, nil
}

func (m *mockCategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, categoryID)
	}
	return nil
}

// --- ヘルパー ---

// withUser は認証ミドルウェア通過後と同じコンテキストを持つリクエストを返す。
func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

// decodeBody はレスポンスボディを任意の型にデコードする。
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v\nraw: %s", err, w.Body.String())
	}
	return v
}

// decodeError はエラーレスポンスをデコードする。
func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	return decodeBody[middleware.ErrorResponseBody](t, w)
}
