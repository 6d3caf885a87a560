package requestlog

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pqbot/core/logger"
)

// Migrations holds the schema of the requests table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the files.
const MigrationsDir = "migrations"

// SQLSink inserts entries into the requests table.
type SQLSink struct {
	db *sqlx.DB
}

// NewSQLSink wraps an open database whose schema is already migrated.
func NewSQLSink(db *sqlx.DB) *SQLSink {
	return &SQLSink{db: db}
}

const insertRequest = `INSERT INTO requests (id, sender, body, created_at) VALUES (?, ?, ?, ?)`

// Append inserts a row for the entry.
func (s *SQLSink) Append(ctx context.Context, e Entry) error {
	query := s.db.Rebind(insertRequest)
	if _, err := s.db.ExecContext(ctx, query, e.ID.String(), e.Sender, e.Text, e.At.UTC()); err != nil {
		return fmt.Errorf("requestlog: insert: %w", err)
	}
	logger.Debug(ctx, logger.CompRequests, "insert",
		slog.String("status", "ok"),
		slog.String("request_id", e.ID.String()),
	)
	return nil
}
