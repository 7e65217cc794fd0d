package task

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// --- モック ---

type mockTaskRepo struct {
	listByUserFn func(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error)
	findByIDFn   func(ctx context.Context, userID, id string) (*model.Task, error)
	createFn     func(ctx context.Context, task *model.Task) error
	updateFn     func(ctx context.Context, task *model.Task) error
	deleteFn     func(ctx context.Context, userID, id string) error
}

func (m *mockTaskRepo) ListByUser(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, filter)
	}
	return nil, nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

type mockCategoryRepo struct {
	listByUserFn func(ctx context.Context, userID string) ([]*model.Category, error)
	findByIDFn   func(ctx context.Context, userID, id string) (*model.Category, error)
	createFn     func(ctx context.Context, category *model.Category) error
	updateFn     func(ctx context.Context, category *model.Category) error
	deleteFn     func(ctx context.Context, userID, id string) error
}

func (m *mockCategoryRepo) ListByUser(ctx context.Context, userID string) ([]*model.Category, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, userID, id string) (*model.Category, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	if m.createFn != nil {
		return m.createFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

var (
	_ repository.TaskRepository     = (*mockTaskRepo)(nil)
	_ repository.CategoryRepository = (*mockCategoryRepo)(nil)
)
