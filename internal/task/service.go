// Package task はタスクとカテゴリの管理機能を提供する。
//
// すべての操作は認証済みユーザーIDを受け取り、リポジトリにそのまま渡す。
package task

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// 入力値の上限
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
)

// CreateInput はタスク作成の入力。
type CreateInput struct {
	Title       string
	Description string
	Status      model.TaskStatus   // 空の場合はtodo
	Priority    model.TaskPriority // 空の場合はmedium
	DueDate     *time.Time
	CategoryID  *string
}

// UpdateInput はタスク更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title        *string
	Description  *string
	Status       *model.TaskStatus
	Priority     *model.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	CategoryID   *string // 空文字列はカテゴリ解除
}

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	sanitizer    security.TextSanitizer
	metrics      metrics.MetricsCollector
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	taskRepo repository.TaskRepository,
	categoryRepo repository.CategoryRepository,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		sanitizer:    sanitizer,
		metrics:      collector,
		now:          time.Now,
	}
}

// List はユーザーのタスク一覧を返す。
func (s *Service) List(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("Invalid status: %s", filter.Status))
	}
	if filter.CategoryID != "" {
		id, ok := parseID(filter.CategoryID)
		if !ok {
			return nil, model.NewCategoryNotFoundError(filter.CategoryID)
		}
		filter.CategoryID = id
	}
	tasks, err := s.taskRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return tasks, nil
}

// Get はユーザーが所有するタスクを返す。
func (s *Service) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	id, ok := parseID(taskID)
	if !ok {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	t, err := s.taskRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	return t, nil
}

// Create はタスクを作成する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Task, error) {
	title, err := s.cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := s.cleanDescription(in.Description)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	if !status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("Invalid status: %s", status))
	}
	priority := in.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("Invalid priority: %s", priority))
	}

	categoryID, err := s.resolveCategory(ctx, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		CategoryID:  categoryID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.metrics.RecordTaskMutation("create")
	return t, nil
}

// Update はタスクを部分更新する。
func (s *Service) Update(ctx context.Context, userID, taskID string, in UpdateInput) (*model.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if t.Title, err = s.cleanTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if t.Description, err = s.cleanDescription(*in.Description); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, model.NewValidationError(fmt.Sprintf("Invalid status: %s", *in.Status))
		}
		t.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, model.NewValidationError(fmt.Sprintf("Invalid priority: %s", *in.Priority))
		}
		t.Priority = *in.Priority
	}
	switch {
	case in.ClearDueDate:
		t.DueDate = nil
	case in.DueDate != nil:
		t.DueDate = in.DueDate
	}
	if in.CategoryID != nil {
		if t.CategoryID, err = s.resolveCategory(ctx, userID, in.CategoryID); err != nil {
			return nil, err
		}
	}

	t.UpdatedAt = s.now()
	if err := s.taskRepo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewTaskNotFoundError(taskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	s.metrics.RecordTaskMutation("update")
	return t, nil
}

// Delete はタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	id, ok := parseID(taskID)
	if !ok {
		return model.NewTaskNotFoundError(taskID)
	}
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewTaskNotFoundError(taskID)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.metrics.RecordTaskMutation("delete")
	return nil
}

func (s *Service) cleanTitle(raw string) (string, error) {
	title := s.sanitizer.SanitizePlain(raw)
	if title == "" {
		return "", model.NewMissingFieldsError("title")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", model.NewValidationError(fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	}
	return title, nil
}

func (s *Service) cleanDescription(raw string) (string, error) {
	description := s.sanitizer.SanitizeRich(raw)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", model.NewValidationError(fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	}
	return description, nil
}

// resolveCategory はカテゴリIDが同じユーザーの所有であることを確認する。
// nilまたは空文字列はカテゴリなしとして扱う。
func (s *Service) resolveCategory(ctx context.Context, userID string, categoryID *string) (*string, error) {
	if categoryID == nil || *categoryID == "" {
		return nil, nil
	}
	id, ok := parseID(*categoryID)
	if !ok {
		return nil, model.NewCategoryNotFoundError(*categoryID)
	}
	c, err := s.categoryRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if c == nil {
		return nil, model.NewCategoryNotFoundError(*categoryID)
	}
	id = c.ID
	return &id, nil
}

// parseID はパスやクエリで受け取ったIDをUUIDの正規形に変換する。
// UUIDとして解釈できない値は存在しないリソースとして扱う。
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
