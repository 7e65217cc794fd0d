package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// storeFactories はすべての実装に同じ振る舞いを要求するためのテーブル。
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file": func() Store {
			return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		},
		"sqlite": func() Store {
			s, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "session.db"))
			if err != nil {
				t.Fatalf("OpenSQLiteStore() error = %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_EmptyByDefault(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			if token, ok := s.Get(); ok || token != "" {
				t.Errorf("Get() = (%q, %v), want (\"\", false)", token, ok)
			}
		})
	}
}

func TestStore_SetGetClear(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()

			if err := s.Set("first"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set("second"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			token, ok := s.Get()
			if !ok || token != "second" {
				t.Errorf("Get() = (%q, %v), want (\"second\", true)", token, ok)
			}

			if err := s.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if _, ok := s.Get(); ok {
				t.Error("Get() after Clear() should report no token")
			}

			// 二重のClearも成功すること
			if err := s.Clear(); err != nil {
				t.Errorf("second Clear() error = %v", err)
			}
		})
	}
}

func TestFileStore_WritesTokenKeyWithPrivatePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)

	if err := s.Set("abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"token":"abc"}` {
		t.Errorf("file content = %s, want {\"token\":\"abc\"}", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file permission = %o, want 600", perm)
	}
}

func TestFileStore_CorruptFileMeansNoToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, ok := NewFileStore(path).Get(); ok {
		t.Error("corrupt session file should be treated as no token")
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenSQLiteStore(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := s.Set("persisted"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.Close()

	reopened, err := OpenSQLiteStore(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	if token, ok := reopened.Get(); !ok || token != "persisted" {
		t.Errorf("Get() after reopen = (%q, %v), want (\"persisted\", true)", token, ok)
	}
}
