package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore はJSONファイルにトークンを保存するStore。
// ファイルは {"token": "..."} の形式で、パーミッション0600で書き込む。
type FileStore struct {
	path string
}

// NewFileStore はFileStoreを生成する。ファイルは最初のSetまで作成しない。
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path は保存先のファイルパスを返す。
func (s *FileStore) Path() string {
	return s.path
}

// Get はファイルからトークンを読み込む。
// ファイルが存在しない・壊れている場合はトークン無しとして扱う。
func (s *FileStore) Get() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return "", false
	}
	token := values[Key]
	return token, token != ""
}

func (s *FileStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.Marshal(map[string]string{Key: token})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	// 書き込み途中のファイルを読まれないよう一時ファイル経由で置き換える
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
