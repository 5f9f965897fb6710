// Package database persists the user registry and the activity log. Both
// are side channels: failures here are logged by callers, never surfaced to
// the chat and never fatal.
package database

import (
	"context"

	"cfbot/internal/model"
)

// Store is append-oriented: users are upserted on sight, audit entries are
// only ever added. ListAudit returns newest entries first; a non-positive
// limit lets the backend choose how far back to go.
type Store interface {
	RecordUser(ctx context.Context, u model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)
	AppendAudit(ctx context.Context, e model.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error)
	Close() error
}

// / Open selects the backend: a Postgres DSN wins, otherwise JSON files under
// dir.
func Open(dsn, dir string) (Store, error) {
	if dsn != "" {
		return OpenPostgres(dsn)
	}
	return OpenFileStore(dir)
}
