// Package repository はデータ永続化のインターフェースを定義する。
//
// タスクとカテゴリのメソッドはすべて所有者のユーザーIDを引数に取り、
// SQLの条件に必ず user_id を含める。他ユーザーのデータには構造的に到達できない。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

var (
	// ErrNotFound は更新・削除対象の行が存在しない（または所有者が異なる）場合に返される。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail はメールアドレスの一意制約違反時に返される。
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername はユーザー名の一意制約違反時に返される。
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateCategory は同一ユーザー内のカテゴリ名重複時に返される。
	ErrDuplicateCategory = errors.New("category already exists")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// 一意制約違反時はErrDuplicateEmailまたはErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザー名・メールアドレス・パスワードハッシュを更新する。
	Update(ctx context.Context, user *model.User) error

	// DeleteWithData はユーザーと所有する全タスク・カテゴリを同一トランザクションで削除する。
	DeleteWithData(ctx context.Context, id string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// ListByUser はユーザーのタスク一覧を期日・作成日時順で返す。
	ListByUser(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error)

	// FindByID はユーザーが所有する指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id string) (*model.Task, error)

	// Create はタスクを作成する。task.UserIDが所有者となる。
	Create(ctx context.Context, task *model.Task) error

	// Update はtask.UserIDが所有するタスクを更新する。対象がなければErrNotFoundを返す。
	Update(ctx context.Context, task *model.Task) error

	// Delete はユーザーが所有するタスクを削除する。対象がなければErrNotFoundを返す。
	Delete(ctx context.Context, userID, id string) error
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// ListByUser はユーザーのカテゴリ一覧を名前順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Category, error)

	// FindByID はユーザーが所有する指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id string) (*model.Category, error)

	// Create はカテゴリを作成する。名前重複時はErrDuplicateCategoryを返す。
	Create(ctx context.Context, category *model.Category) error

	// Update はcategory.UserIDが所有するカテゴリを更新する。
	Update(ctx context.Context, category *model.Category) error

	// Delete はユーザーが所有するカテゴリを削除する。
	// 所属タスクは削除せず、category_idをNULLにする。
	Delete(ctx context.Context, userID, id string) error
}
