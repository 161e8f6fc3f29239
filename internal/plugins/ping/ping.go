// Package ping is the smallest possible extension, useful both as a
// liveness check and as the reference for writing new plugins.
package ping

import (
	"context"
	"fmt"
	"time"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/plugin"
)

func init() {
	plugin.Add(func() plugin.Extension { return Ping{} })
}

type Ping struct{}

func (Ping) Name() string { return "ping" }

func (Ping) Commands() []string { return []string{"#ping"} }

func (Ping) Handle(ctx context.Context, c *command.Context) error {
	started := time.Now()
	ref, err := c.Transport.ReplyMessage(ctx, c.Message.Chat.ID, c.Message.MessageID, "🏓 Pong!")
	if err != nil {
		return err
	}
	rtt := time.Since(started).Milliseconds()
	return c.Transport.EditMessage(ctx, ref, fmt.Sprintf("🏓 Pong! Response time: `%dms`", rtt))
}
