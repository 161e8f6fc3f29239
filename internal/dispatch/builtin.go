package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/branding"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/version"
)

// commandCounter is satisfied by oplog sinks that can report totals.
type commandCounter interface {
	CommandCounts(ctx context.Context) (succeeded, failed int64, err error)
}

// RegisterBuiltins fills the static route table with the commands that
// ship inside the core rather than as extensions.
func (p *Pipeline) RegisterBuiltins() {
	p.Route("#help", p.helpHandler)
	p.Route("#rules", p.rulesHandler)
	p.Route(".stats", p.statsHandler)
}

func (p *Pipeline) helpHandler(ctx context.Context, c *command.Context) error {
	var b strings.Builder
	b.WriteString("**" + version.AppName + " — Help**\n\n")
	b.WriteString("**Admin Commands:**\n")
	b.WriteString("/lock <user> - Lock user (auto-delete messages)\n")
	b.WriteString("/unlock <user_id> - Unlock user\n")
	b.WriteString("/locklist - Show locked users\n")
	b.WriteString("/tag <message> - Tag all members\n")
	b.WriteString("/ctag - Cancel a running tag\n\n")
	b.WriteString("**Developer Commands:**\n")
	b.WriteString(".stats - Bot statistics\n")
	b.WriteString(".setwelcome <message> - Set welcome message\n")
	b.WriteString(".privacy <on|off> - Toggle silent mode\n")
	b.WriteString(".reload - Load newly available extensions\n\n")
	b.WriteString("**Public Commands:**\n")
	b.WriteString("#ping - Liveness check\n")
	b.WriteString("#help - Show this help\n")
	b.WriteString("#rules - Show group rules\n")
	return c.Reply(ctx, branding.Wrap(b.String()))
}

func (p *Pipeline) rulesHandler(ctx context.Context, c *command.Context) error {
	rules := "**Group Rules**\n\n" +
		"1. Be respectful.\n" +
		"2. No spam or mass mentions outside admin tags.\n" +
		"3. Admin decisions are final."
	return c.Reply(ctx, branding.Wrap(rules))
}

func (p *Pipeline) statsHandler(ctx context.Context, c *command.Context) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 **%s %s Statistics**\n\n", version.AppName, version.AppVersion))
	b.WriteString(fmt.Sprintf("• Uptime: %s\n", time.Since(c.App.StartedAt).Round(time.Second)))
	b.WriteString(fmt.Sprintf("• Registered commands: %d\n", len(c.App.Registry.Names())+len(p.routes)))
	if c.App.Storage != nil {
		b.WriteString(fmt.Sprintf("• Tracked chats: %d\n", c.App.Storage.TrackedChats()))
	}
	if counter, ok := p.oplog.(commandCounter); ok {
		if succeeded, failed, err := counter.CommandCounts(ctx); err == nil {
			b.WriteString(fmt.Sprintf("• Commands served: %d (%d failed)\n", succeeded+failed, failed))
		}
	}

	text := branding.Wrap(b.String())
	if c.App.Privacy != nil && c.App.Privacy.Enabled() {
		return c.App.Privacy.Deliver(ctx, c.Transport, c.Message, text)
	}
	return c.Reply(ctx, text)
}
