// Package oplog records command invocations and faults for operations:
// every record lands in a SQLite table, and faults are additionally
// forwarded to a Telegram log channel when one is configured.
package oplog

import (
	"context"
	"time"
)

// CommandRecord describes one finished (or denied) command invocation.
type CommandRecord struct {
	UserID    int64
	ChatID    int64
	Command   string
	Success   bool
	ElapsedMs int64
	Error     string
}

// FaultRecord describes a handler failure with its context.
type FaultRecord struct {
	UserID  int64
	ChatID  int64
	Command string
	Fault   string
	At      time.Time
}

// Recorder is the operational log sink consumed by the dispatch pipeline.
type Recorder interface {
	RecordCommand(ctx context.Context, rec CommandRecord) error
	RecordFault(ctx context.Context, rec FaultRecord) error
}

// Nop discards every record; useful in tests and when operating without
// an oplog database.
type Nop struct{}

func (Nop) RecordCommand(context.Context, CommandRecord) error { return nil }
func (Nop) RecordFault(context.Context, FaultRecord) error     { return nil }
