package oplog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "oplog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCreatesDirectory(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested", "deeper", "oplog.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestCommandCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	succeeded, failed, err := s.CommandCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, succeeded)
	assert.Zero(t, failed)

	require.NoError(t, s.RecordCommand(ctx, CommandRecord{
		UserID: 42, ChatID: 100, Command: "#ping", Success: true, ElapsedMs: 12,
	}))
	require.NoError(t, s.RecordCommand(ctx, CommandRecord{
		UserID: 42, ChatID: 100, Command: "/lock", Success: false, Error: "permission denied",
	}))
	require.NoError(t, s.RecordCommand(ctx, CommandRecord{
		UserID: 2, ChatID: 100, Command: ".stats", Success: true, ElapsedMs: 3,
	}))

	succeeded, failed, err = s.CommandCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), succeeded)
	assert.Equal(t, int64(1), failed)
}

func TestRecordFault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordFault(ctx, FaultRecord{
		UserID: 42, ChatID: 100, Command: "#boom", Fault: "handler panic: nil map write",
	}))
	require.NoError(t, s.RecordFault(ctx, FaultRecord{
		UserID: 42, ChatID: 100, Command: "#boom", Fault: "again",
		At: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	var n int64
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faults`).Scan(&n))
	assert.Equal(t, int64(2), n)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oplog.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordCommand(ctx, CommandRecord{Command: "#ping", Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	succeeded, _, err := s.CommandCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), succeeded)
}
