package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cfbot/internal/model"
)

// FileStore keeps two JSON array files under a data directory. Each write
// re-reads the array, appends, and rewrites the whole file; the mutex makes
// that read-modify-write safe across conversations.
type FileStore struct {
	mu        sync.Mutex
	usersPath string
	auditPath string
}

func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{
		usersPath: filepath.Join(dir, "users.json"),
		auditPath: filepath.Join(dir, "activity.json"),
	}, nil
}

func (f *FileStore) RecordUser(ctx context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var users []model.User
	if err := readArray(f.usersPath, &users); err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			return writeArray(f.usersPath, users)
		}
	}
	users = append(users, u)
	return writeArray(f.usersPath, users)
}

func (f *FileStore) ListUsers(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var users []model.User
	if err := readArray(f.usersPath, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (f *FileStore) AppendAudit(ctx context.Context, e model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []model.AuditEntry
	if err := readArray(f.auditPath, &entries); err != nil {
		return err
	}
	entries = append(entries, e)
	return writeArray(f.auditPath, entries)
}

// ListAudit returns the newest entries first, at most limit of them
// (limit <= 0 means all).
func (f *FileStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []model.AuditEntry
	if err := readArray(f.auditPath, &entries); err != nil {
		return nil, err
	}

	out := make([]model.AuditEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FileStore) Close() error { return nil }

func readArray(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeArray(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
