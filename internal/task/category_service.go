package task

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// DefaultCategoryColor は色未指定時のカテゴリ色。
const DefaultCategoryColor = "#808080"

// MaxCategoryNameLength はカテゴリ名の最大文字数。
const MaxCategoryNameLength = 50

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryService はカテゴリ管理のサービス層。
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	sanitizer    security.TextSanitizer
	now          func() time.Time
}

// NewCategoryService はCategoryServiceの新しいインスタンスを生成する。
func NewCategoryService(categoryRepo repository.CategoryRepository, sanitizer security.TextSanitizer) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		sanitizer:    sanitizer,
		now:          time.Now,
	}
}

// List はユーザーのカテゴリ一覧を返す。
func (s *CategoryService) List(ctx context.Context, userID string) ([]*model.Category, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}

// Create はカテゴリを作成する。同じユーザー内で名前が重複する場合はエラーを返す。
func (s *CategoryService) Create(ctx context.Context, userID, name, color string) (*model.Category, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}
	if color, err = cleanColor(color); err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return nil, model.NewCategoryExistsError(name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// Update はカテゴリ名・色を更新する。nilのフィールドは変更しない。
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, name, color *string) (*model.Category, error) {
	id, ok := parseID(categoryID)
	if !ok {
		return nil, model.NewCategoryNotFoundError(categoryID)
	}
	c, err := s.categoryRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if c == nil {
		return nil, model.NewCategoryNotFoundError(categoryID)
	}

	if name != nil {
		if c.Name, err = s.cleanName(*name); err != nil {
			return nil, err
		}
	}
	if color != nil {
		if c.Color, err = cleanColor(*color); err != nil {
			return nil, err
		}
	}

	c.UpdatedAt = s.now()
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateCategory):
			return nil, model.NewCategoryExistsError(c.Name)
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewCategoryNotFoundError(categoryID)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// Delete はカテゴリを削除する。所属タスクはカテゴリなしになる。
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	id, ok := parseID(categoryID)
	if !ok {
		return model.NewCategoryNotFoundError(categoryID)
	}
	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewCategoryNotFoundError(categoryID)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) cleanName(raw string) (string, error) {
	name := s.sanitizer.SanitizePlain(raw)
	if name == "" {
		return "", model.NewMissingFieldsError("name")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return "", model.NewValidationError(fmt.Sprintf("Name must be at most %d characters", MaxCategoryNameLength))
	}
	return name, nil
}

func cleanColor(raw string) (string, error) {
	color := strings.TrimSpace(raw)
	if color == "" {
		return DefaultCategoryColor, nil
	}
	if !colorPattern.MatchString(color) {
		return "", model.NewValidationError("Color must be a hex value like #1a2b3c")
	}
	return strings.ToLower(color), nil
}
