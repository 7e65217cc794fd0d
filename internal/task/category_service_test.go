package task

import (
	"context"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

func TestCategoryCreate_DefaultColor(t *testing.T) {
	var saved *model.Category
	repo := &mockCategoryRepo{
		createFn: func(_ context.Context, c *model.Category) error {
			saved = c
			return nil
		},
	}
	svc := NewCategoryService(repo, security.NewTextSanitizer())

	got, err := svc.Create(context.Background(), "user-1", " Work ", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if saved == nil || saved.UserID != "user-1" {
		t.Fatalf("saved = %+v, want owner user-1", saved)
	}
	if got.Name != "Work" {
		t.Errorf("Name = %q, want %q", got.Name, "Work")
	}
	if got.Color != DefaultCategoryColor {
		t.Errorf("Color = %q, want %q", got.Color, DefaultCategoryColor)
	}
}

func TestCategoryCreate_Validation(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{}, security.NewTextSanitizer())

	_, err := svc.Create(context.Background(), "user-1", "", "")
	assertAPIErrorCode(t, err, model.ErrCodeMissingFields)

	_, err = svc.Create(context.Background(), "user-1", "Work", "red")
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}

func TestCategoryCreate_Duplicate(t *testing.T) {
	repo := &mockCategoryRepo{
		createFn: func(_ context.Context, _ *model.Category) error { return repository.ErrDuplicateCategory },
	}
	svc := NewCategoryService(repo, security.NewTextSanitizer())

	_, err := svc.Create(context.Background(), "user-1", "Work", "#FF0000")
	assertAPIErrorCode(t, err, model.ErrCodeCategoryExists)
}

func TestCategoryUpdate_NotOwned(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{}, security.NewTextSanitizer())

	name := "Home"
	_, err := svc.Update(context.Background(), "user-1", testCategoryID, &name, nil)
	assertAPIErrorCode(t, err, model.ErrCodeCategoryNotFound)
}

func TestCategoryUpdate_NormalizesColor(t *testing.T) {
	repo := &mockCategoryRepo{
		findByIDFn: func(_ context.Context, userID, id string) (*model.Category, error) {
			return &model.Category{ID: id, UserID: userID, Name: "Work", Color: DefaultCategoryColor}, nil
		},
	}
	svc := NewCategoryService(repo, security.NewTextSanitizer())

	color := "#AABBCC"
	got, err := svc.Update(context.Background(), "user-1", testCategoryID, nil, &color)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Color != "#aabbcc" || got.Name != "Work" {
		t.Errorf("got = %+v, want color #aabbcc and unchanged name", got)
	}
}

func TestCategoryDelete_TranslatesNotFound(t *testing.T) {
	repo := &mockCategoryRepo{
		deleteFn: func(_ context.Context, _, _ string) error { return repository.ErrNotFound },
	}
	svc := NewCategoryService(repo, security.NewTextSanitizer())

	err := svc.Delete(context.Background(), "user-1", testCategoryID)
	assertAPIErrorCode(t, err, model.ErrCodeCategoryNotFound)
}

func TestCategoryMalformedID_NotFound(t *testing.T) {
	repo := &mockCategoryRepo{
		findByIDFn: func(context.Context, string, string) (*model.Category, error) {
			t.Error("FindByID should not be called for a malformed id")
			return nil, nil
		},
		deleteFn: func(context.Context, string, string) error {
			t.Error("Delete should not be called for a malformed id")
			return nil
		},
	}
	svc := NewCategoryService(repo, security.NewTextSanitizer())

	name := "Home"
	_, err := svc.Update(context.Background(), "user-1", "abc", &name, nil)
	assertAPIErrorCode(t, err, model.ErrCodeCategoryNotFound)

	err = svc.Delete(context.Background(), "user-1", "abc")
	assertAPIErrorCode(t, err, model.ErrCodeCategoryNotFound)
}
