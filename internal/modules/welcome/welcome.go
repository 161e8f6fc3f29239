// Package welcome greets new chat members with per-chat configurable text.
package welcome

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/plugin"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

func init() {
	plugin.Add(func() plugin.Extension { return &Welcome{} })
}

type Welcome struct {
	store *storage.Storage
	log   zerolog.Logger
}

func (w *Welcome) Name() string { return "welcome" }

func (w *Welcome) Commands() []string {
	return []string{".setwelcome", ".welcome"}
}

func (w *Welcome) Setup(ctx context.Context, app *command.App) error {
	if !app.Config.EnableWelcomeSystem {
		return fmt.Errorf("welcome system disabled by configuration")
	}
	w.store = app.Storage
	w.log = app.Log.With().Str("component", "welcome").Logger()

	app.OnJoin(func(ctx context.Context, t telegram.Transport, chatID int64, user tgbotapi.User) {
		text, err := w.store.Welcome(chatID)
		if err != nil || text == "" {
			return
		}
		name := user.FirstName
		if user.UserName != "" {
			name = "@" + user.UserName
		}
		rendered := strings.ReplaceAll(text, "{name}", name)
		if _, err := t.SendMessage(ctx, chatID, rendered); err != nil {
			w.log.Debug().Err(err).Int64("chat_id", chatID).Msg("could not send welcome")
		}
	})
	return nil
}

func (w *Welcome) Handle(ctx context.Context, c *command.Context) error {
	switch c.Command {
	case ".setwelcome":
		return w.set(ctx, c)
	case ".welcome":
		return w.show(ctx, c)
	default:
		return fmt.Errorf("welcome: unexpected command %q", c.Command)
	}
}

func (w *Welcome) set(ctx context.Context, c *command.Context) error {
	text := strings.Join(c.Args, " ")
	if err := w.store.SetWelcome(c.Message.Chat.ID, text); err != nil {
		return fmt.Errorf("set welcome: %w", err)
	}
	if text == "" {
		return c.Reply(ctx, "👋 Welcome message cleared")
	}
	return c.Reply(ctx, "👋 Welcome message saved. {name} expands to the new member's name.")
}

func (w *Welcome) show(ctx context.Context, c *command.Context) error {
	text, err := w.store.Welcome(c.Message.Chat.ID)
	if err != nil {
		return fmt.Errorf("get welcome: %w", err)
	}
	if text == "" {
		return c.Reply(ctx, "No welcome message set for this chat")
	}
	return c.Reply(ctx, "Current welcome message:\n\n"+text)
}
