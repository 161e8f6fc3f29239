package oplog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists records in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and
// prepares the tables.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create oplog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open oplog database: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			chat_id INTEGER NOT NULL,
			command TEXT NOT NULL,
			success INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commands_at ON commands(at DESC)`,
		`CREATE TABLE IF NOT EXISTS faults (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			chat_id INTEGER NOT NULL,
			command TEXT NOT NULL,
			fault TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_faults_at ON faults(at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("prepare oplog schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCommand inserts one command record.
func (s *Store) RecordCommand(ctx context.Context, rec CommandRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commands (at, user_id, chat_id, command, success, elapsed_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, time.Now().Unix(), rec.UserID, rec.ChatID, rec.Command, boolToInt(rec.Success), rec.ElapsedMs, rec.Error)
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

// RecordFault inserts one fault record.
func (s *Store) RecordFault(ctx context.Context, rec FaultRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO faults (at, user_id, chat_id, command, fault)
		VALUES (?, ?, ?, ?, ?)
	`, at.Unix(), rec.UserID, rec.ChatID, rec.Command, rec.Fault)
	if err != nil {
		return fmt.Errorf("record fault: %w", err)
	}
	return nil
}

// CommandCounts returns how many invocations were recorded, split by
// outcome.
func (s *Store) CommandCounts(ctx context.Context) (succeeded, failed int64, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(success), 0),
			COALESCE(SUM(1 - success), 0)
		FROM commands
	`)
	if err := row.Scan(&succeeded, &failed); err != nil {
		return 0, 0, fmt.Errorf("count commands: %w", err)
	}
	return succeeded, failed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
