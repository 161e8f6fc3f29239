package oplog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

// Telegram caps messages at 4096 chars; leave room for the framing.
const maxReportLen = 3900

// Sink combines the SQLite store with an optional Telegram log channel.
// Commands go to the store only; faults go to both.
type Sink struct {
	store     Recorder
	transport telegram.Transport
	channelID int64
	log       zerolog.Logger
}

// NewSink wraps store. channelID zero disables channel forwarding.
func NewSink(store Recorder, transport telegram.Transport, channelID int64, log zerolog.Logger) *Sink {
	return &Sink{
		store:     store,
		transport: transport,
		channelID: channelID,
		log:       log.With().Str("component", "oplog").Logger(),
	}
}

func (s *Sink) RecordCommand(ctx context.Context, rec CommandRecord) error {
	return s.store.RecordCommand(ctx, rec)
}

func (s *Sink) RecordFault(ctx context.Context, rec FaultRecord) error {
	err := s.store.RecordFault(ctx, rec)

	if s.channelID != 0 && s.transport != nil {
		report := fmt.Sprintf(
			"🚨 **Handler fault**\n\nCommand: `%s`\nUser: `%d`\nChat: `%d`\n\n```\n%s\n```",
			rec.Command, rec.UserID, rec.ChatID, truncate(rec.Fault, maxReportLen),
		)
		if _, serr := s.transport.SendMessage(ctx, s.channelID, report); serr != nil {
			// The channel is best effort; the store already has the record.
			s.log.Warn().Err(serr).Msg("could not forward fault to log channel")
		}
	}
	return err
}

// CommandCounts passes through to the underlying store when it keeps
// totals.
func (s *Sink) CommandCounts(ctx context.Context) (succeeded, failed int64, err error) {
	type counter interface {
		CommandCounts(ctx context.Context) (int64, int64, error)
	}
	if c, ok := s.store.(counter); ok {
		return c.CommandCounts(ctx)
	}
	return 0, 0, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n...[truncated]"
}
