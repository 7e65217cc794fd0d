package session

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore はローカルのSQLiteデータベースのkvテーブルにトークンを保存するStore。
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore はdsnのSQLiteデータベースを開き、kvテーブルを用意する。
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// 単一ファイルへの書き込みを直列化する
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get はトークンを読み込む。読み込みエラーはトークン無しとして扱う。
func (s *SQLiteStore) Get() (string, bool) {
	var token string
	err := s.db.QueryRowContext(context.Background(), `SELECT value FROM kv WHERE key = ?`, Key).Scan(&token)
	if err != nil {
		return "", false
	}
	return token, token != ""
}

func (s *SQLiteStore) Set(token string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, Key, token)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", Key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM kv WHERE key = ?`, Key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", Key, err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
