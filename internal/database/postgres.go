package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"cfbot/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore is the durable backend for deployments that outgrow the
// JSON files.
type PostgresStore struct {
	conn *sql.DB
}

func OpenPostgres(dsn string) (*PostgresStore, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &PostgresStore{conn: conn}, nil
}

func runMigrations(conn *sql.DB) error {
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (p *PostgresStore) RecordUser(ctx context.Context, u model.User) error {
	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO bot_users (id, username, first_name, last_name, seen_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET username = $2, first_name = $3, last_name = $4, seen_at = $5`,
		u.ID, u.Username, u.FirstName, u.LastName, u.SeenAt,
	)
	return err
}

func (p *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := p.conn.QueryContext(ctx,
		"SELECT id, username, first_name, last_name, seen_at FROM bot_users ORDER BY seen_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.SeenAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *PostgresStore) AppendAudit(ctx context.Context, e model.AuditEntry) error {
	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO activity_log (time, user_id, username, first_name, action, detail)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Time, e.UserID, e.Username, e.FirstName, e.Action, e.Detail,
	)
	return err
}

func (p *PostgresStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.conn.QueryContext(ctx,
		`SELECT time, user_id, username, first_name, action, detail
		 FROM activity_log ORDER BY time DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.Time, &e.UserID, &e.Username, &e.FirstName, &e.Action, &e.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStore) Close() error { return p.conn.Close() }
