package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Task はAPIが返すタスク。
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CategoryID  *string    `json:"categoryId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask はタスク作成のリクエスト。
type NewTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
}

// TaskPatch はタスク更新のリクエスト。nilのフィールドは変更しない。
type TaskPatch struct {
	Title    *string `json:"title,omitempty"`
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// Category はAPIが返すカテゴリ。
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile はログイン中ユーザーのプロフィール。
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register はユーザーを登録し、発行されたトークンをセッションに保存する。
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var resp tokenResponse
	err := c.RequestPublic(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	return c.saveToken(resp.Token)
}

// Login はログインし、発行されたトークンをセッションに保存する。
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp tokenResponse
	err := c.RequestPublic(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	return c.saveToken(resp.Token)
}

// Logout はローカルのセッションを破棄する。
// サーバー側に失効の仕組みは無く、発行済みトークンは期限まで有効なまま残る。
func (c *Client) Logout() error {
	return c.store.Clear()
}

func (c *Client) saveToken(token string) error {
	if token == "" {
		return fmt.Errorf("server response did not include a token")
	}
	return c.store.Set(token)
}

// Profile はプロフィールを取得する。
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var resp struct {
		User Profile `json:"user"`
	}
	if err := c.Request(ctx, http.MethodGet, "/api/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteAccount はアカウントと全データを削除し、成功した場合はセッションも破棄する。
func (c *Client) DeleteAccount(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.Request(ctx, http.MethodDelete, "/api/users/delete", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, c.store.Clear()
}

// ListTasks はタスク一覧を取得する。status・categoryIDが空の場合は絞り込まない。
func (c *Client) ListTasks(ctx context.Context, status, categoryID string) ([]Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if categoryID != "" {
		q.Set("categoryId", categoryID)
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.Request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask はタスクを作成する。
func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	if err := c.Request(ctx, http.MethodPost, "/api/tasks", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// UpdateTask はタスクを部分更新する。
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	if err := c.Request(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), patch, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// DeleteTask はタスクを削除する。
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// ListCategories はカテゴリ一覧を取得する。
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.Request(ctx, http.MethodGet, "/api/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// CreateCategory はカテゴリを作成する。
func (c *Client) CreateCategory(ctx context.Context, name, color string) (*Category, error) {
	var resp struct {
		Category Category `json:"category"`
	}
	body := map[string]string{"name": name, "color": color}
	if err := c.Request(ctx, http.MethodPost, "/api/categories", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

// DeleteCategory はカテゴリを削除する。所属タスクはカテゴリ無しとして残る。
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}
