// Package settings carries the runtime toggles: silent-mode control and
// extension reload.
package settings

import (
	"context"
	"fmt"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/plugin"
)

func init() {
	plugin.Add(func() plugin.Extension { return &Settings{} })
}

type Settings struct{}

func (s *Settings) Name() string { return "settings" }

func (s *Settings) Commands() []string {
	return []string{".privacy", ".reload"}
}

func (s *Settings) Handle(ctx context.Context, c *command.Context) error {
	switch c.Command {
	case ".privacy":
		return s.privacy(ctx, c)
	case ".reload":
		return s.reload(ctx, c)
	default:
		return fmt.Errorf("settings: unexpected command %q", c.Command)
	}
}

func (s *Settings) privacy(ctx context.Context, c *command.Context) error {
	if c.App.Privacy == nil || !c.App.Privacy.Enabled() {
		return c.Reply(ctx, "Privacy system is disabled")
	}
	if len(c.Args) == 0 {
		state := "off"
		if c.App.Privacy.IsSilent(c.Message.Chat.ID) {
			state = "on"
		}
		return c.Reply(ctx, fmt.Sprintf("Silent mode is %s. Usage: .privacy <on|off>", state))
	}

	switch c.Args[0] {
	case "on":
		if err := c.App.Privacy.SetSilent(c.Message.Chat.ID, true); err != nil {
			return fmt.Errorf("enable silent mode: %w", err)
		}
		return c.Reply(ctx, "🤫 Silent mode enabled for this chat")
	case "off":
		if err := c.App.Privacy.SetSilent(c.Message.Chat.ID, false); err != nil {
			return fmt.Errorf("disable silent mode: %w", err)
		}
		return c.Reply(ctx, "🔊 Silent mode disabled for this chat")
	default:
		return c.Reply(ctx, "Usage: .privacy <on|off>")
	}
}

func (s *Settings) reload(ctx context.Context, c *command.Context) error {
	if c.App.Reload == nil {
		return c.Reply(ctx, "Reload is not available")
	}
	loaded, failed := c.App.Reload(ctx)
	return c.Reply(ctx, fmt.Sprintf("🔄 Reload finished: %d loaded, %d failed", loaded, failed))
}
