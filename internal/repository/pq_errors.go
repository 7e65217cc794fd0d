package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// 一意制約名（migrationsで定義）
const (
	constraintUsersEmail     = "users_email_key"
	constraintUsersUsername  = "users_username_key"
	constraintCategoriesName = "categories_user_id_name_key"
)

// translateUniqueViolation は一意制約違反をリポジトリのセンチネルエラーに変換する。
// 該当しない場合はnilを返す。
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case constraintUsersEmail:
		return ErrDuplicateEmail
	case constraintUsersUsername:
		return ErrDuplicateUsername
	case constraintCategoriesName:
		return ErrDuplicateCategory
	}
	return nil
}
