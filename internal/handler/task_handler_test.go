package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/security"
	"github.com/hitoshi/taskman/internal/task"
)

// withURLParam はchiのURLパラメータを設定したリクエストを返す。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleTask(userID, id string) *model.Task {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.Task{
		ID:        id,
		UserID:    userID,
		Title:     "write report",
		Status:    model.TaskStatusTodo,
		Priority:  model.TaskPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskHandler_ListTasks_PassesOwnerAndFilter(t *testing.T) {
	var gotUser string
	var gotFilter model.TaskFilter
	h := NewTaskHandler(&mockTaskService{
		listFn: func(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
			gotUser, gotFilter = userID, filter
			return []*model.Task{sampleTask(userID, "t1")}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/tasks?status=done&categoryId=c1", nil), "owner-1")
	w := httptest.NewRecorder()
	h.ListTasks(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUser != "owner-1" {
		t.Errorf("userID = %q, want %q", gotUser, "owner-1")
	}
	if gotFilter.Status != model.TaskStatusDone || gotFilter.CategoryID != "c1" {
		t.Errorf("filter = %+v", gotFilter)
	}
	body := decodeBody[taskListResponse](t, w)
	if len(body.Tasks) != 1 || body.Tasks[0].ID != "t1" {
		t.Errorf("tasks = %+v", body.Tasks)
	}
}

func TestTaskHandler_ListTasks_EmptyIsArray(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/tasks", nil), "owner-1")
	w := httptest.NewRecorder()
	h.ListTasks(w, req)

	if !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Errorf("empty list should encode as [], got %s", w.Body.String())
	}
}

func TestTaskHandler_CreateTask_ParsesDueDate(t *testing.T) {
	var got task.CreateInput
	h := NewTaskHandler(&mockTaskService{
		createFn: func(ctx context.Context, userID string, in task.CreateInput) (*model.Task, error) {
			got = in
			tk := sampleTask(userID, "t-new")
			tk.DueDate = in.DueDate
			return tk, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"title":"write report","priority":"high","dueDate":"2026-04-01","categoryId":"c1"}`)), "owner-1")
	w := httptest.NewRecorder()
	h.CreateTask(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if got.Title != "write report" || got.Priority != model.TaskPriorityHigh {
		t.Errorf("input = %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v", got.DueDate)
	}
	if got.CategoryID == nil || *got.CategoryID != "c1" {
		t.Errorf("CategoryID = %v", got.CategoryID)
	}
}

func TestTaskHandler_CreateTask_InvalidDueDate_Returns400(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{
		createFn: func(ctx context.Context, userID string, in task.CreateInput) (*model.Task, error) {
			t.Error("service should not be called")
			return nil, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"title":"x","dueDate":"next tuesday"}`)), "owner-1")
	w := httptest.NewRecorder()
	h.CreateTask(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTaskHandler_UpdateTask_DueDateSemantics(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantClear bool
		wantDue   bool
	}{
		{"absent keeps", `{"title":"t"}`, false, false},
		{"null clears", `{"dueDate":null}`, true, false},
		{"empty clears", `{"dueDate":""}`, true, false},
		{"value sets", `{"dueDate":"2026-05-05T10:00:00Z"}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got task.UpdateInput
			var gotID string
			h := NewTaskHandler(&mockTaskService{
				updateFn: func(ctx context.Context, userID, taskID string, in task.UpdateInput) (*model.Task, error) {
					got, gotID = in, taskID
					return sampleTask(userID, taskID), nil
				},
			})

			req := httptest.NewRequest(http.MethodPut, "/api/tasks/t1", strings.NewReader(tt.body))
			req = withURLParam(withUser(req, "owner-1"), "id", "t1")
			w := httptest.NewRecorder()
			h.UpdateTask(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if gotID != "t1" {
				t.Errorf("taskID = %q, want %q", gotID, "t1")
			}
			if got.ClearDueDate != tt.wantClear {
				t.Errorf("ClearDueDate = %v, want %v", got.ClearDueDate, tt.wantClear)
			}
			if (got.DueDate != nil) != tt.wantDue {
				t.Errorf("DueDate = %v, want set=%v", got.DueDate, tt.wantDue)
			}
		})
	}
}

func TestTaskHandler_GetTask_NotFound(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{})

	req := withURLParam(withUser(httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil), "owner-1"), "id", "missing")
	w := httptest.NewRecorder()
	h.GetTask(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeError(t, w); body.Code != model.ErrCodeTaskNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeTaskNotFound)
	}
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	var gotUser, gotID string
	h := NewTaskHandler(&mockTaskService{
		deleteFn: func(ctx context.Context, userID, taskID string) error {
			gotUser, gotID = userID, taskID
			return nil
		},
	})

	req := withURLParam(withUser(httptest.NewRequest(http.MethodDelete, "/api/tasks/t9", nil), "owner-1"), "id", "t9")
	w := httptest.NewRecorder()
	h.DeleteTask(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUser != "owner-1" || gotID != "t9" {
		t.Errorf("delete(%q, %q)", gotUser, gotID)
	}
}

// pgUUIDTaskRepo はUUID列に不正な値を渡したときのPostgreSQLのエラーを再現するリポジトリ。
type pgUUIDTaskRepo struct{}

func invalidUUIDError(id string) error {
	if _, err := uuid.Parse(id); err == nil {
		return nil
	}
	return &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "` + id + `"`}
}

func (pgUUIDTaskRepo) ListByUser(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	if filter.CategoryID != "" {
		if err := invalidUUIDError(filter.CategoryID); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (pgUUIDTaskRepo) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	return nil, invalidUUIDError(id)
}

func (pgUUIDTaskRepo) Create(ctx context.Context, t *model.Task) error { return nil }
func (pgUUIDTaskRepo) Update(ctx context.Context, t *model.Task) error { return invalidUUIDError(t.ID) }

func (pgUUIDTaskRepo) Delete(ctx context.Context, userID, id string) error {
	return invalidUUIDError(id)
}

type pgUUIDCategoryRepo struct{}

func (pgUUIDCategoryRepo) ListByUser(ctx context.Context, userID string) ([]*model.Category, error) {
	return nil, nil
}

func (pgUUIDCategoryRepo) FindByID(ctx context.Context, userID, id string) (*model.Category, error) {
	return nil, invalidUUIDError(id)
}

func (pgUUIDCategoryRepo) Create(ctx context.Context, c *model.Category) error { return nil }
func (pgUUIDCategoryRepo) Update(ctx context.Context, c *model.Category) error { return invalidUUIDError(c.ID) }

func (pgUUIDCategoryRepo) Delete(ctx context.Context, userID, id string) error {
	return invalidUUIDError(id)
}

// 不正な形式のIDは404になり、DBのエラー文字列を返さない
func TestHandlers_MalformedID_Returns404(t *testing.T) {
	sanitizer := security.NewTextSanitizer()
	taskHandler := NewTaskHandler(task.NewService(pgUUIDTaskRepo{}, pgUUIDCategoryRepo{}, sanitizer, nil))
	categoryHandler := NewCategoryHandler(task.NewCategoryService(pgUUIDCategoryRepo{}, sanitizer))

	tests := []struct {
		name    string
		method  string
		target  string
		id      string
		body    string
		handle  http.HandlerFunc
		wantErr string
	}{
		{name: "GET /api/tasks/{id}", method: http.MethodGet, target: "/api/tasks/abc", id: "abc", handle: taskHandler.GetTask, wantErr: model.ErrCodeTaskNotFound},
		{name: "PUT /api/tasks/{id}", method: http.MethodPut, target: "/api/tasks/abc", id: "abc", body: `{"title":"x"}`, handle: taskHandler.UpdateTask, wantErr: model.ErrCodeTaskNotFound},
		{name: "DELETE /api/tasks/{id}", method: http.MethodDelete, target: "/api/tasks/abc", id: "abc", handle: taskHandler.DeleteTask, wantErr: model.ErrCodeTaskNotFound},
		{name: "GET /api/tasks?categoryId", method: http.MethodGet, target: "/api/tasks?categoryId=abc", handle: taskHandler.ListTasks, wantErr: model.ErrCodeCategoryNotFound},
		{name: "POST /api/tasks categoryId", method: http.MethodPost, target: "/api/tasks", body: `{"title":"x","categoryId":"abc"}`, handle: taskHandler.CreateTask, wantErr: model.ErrCodeCategoryNotFound},
		{name: "PUT /api/categories/{id}", method: http.MethodPut, target: "/api/categories/abc", id: "abc", body: `{"name":"x"}`, handle: categoryHandler.UpdateCategory, wantErr: model.ErrCodeCategoryNotFound},
		{name: "DELETE /api/categories/{id}", method: http.MethodDelete, target: "/api/categories/abc", id: "abc", handle: categoryHandler.DeleteCategory, wantErr: model.ErrCodeCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			req = withUser(req, "owner-1")
			if tt.id != "" {
				req = withURLParam(req, "id", tt.id)
			}
			w := httptest.NewRecorder()
			tt.handle(w, req)

			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusNotFound, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "invalid input syntax") {
				t.Errorf("response leaks database error: %s", w.Body.String())
			}
			if body := decodeError(t, w); body.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", body.Code, tt.wantErr)
			}
		})
	}
}
