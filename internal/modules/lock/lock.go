// Package lock implements the lock list: locked users have every message
// they send auto-deleted until an admin unlocks them.
package lock

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/branding"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/plugin"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

func init() {
	plugin.Add(func() plugin.Extension { return &Lock{} })
}

type Lock struct {
	store *storage.Storage
	log   zerolog.Logger
}

func (l *Lock) Name() string { return "lock" }

func (l *Lock) Commands() []string {
	return []string{"/lock", "/unlock", "/locklist"}
}

// Setup keeps the storage handle and hooks the pre-dispatch path so
// locked users' messages disappear before anyone handles them.
func (l *Lock) Setup(ctx context.Context, app *command.App) error {
	if !app.Config.EnableLockSystem {
		return fmt.Errorf("lock system disabled by configuration")
	}
	l.store = app.Storage
	l.log = app.Log.With().Str("component", "lock").Logger()

	app.OnMessage(func(ctx context.Context, t telegram.Transport, msg *tgbotapi.Message) bool {
		if msg.From == nil || msg.Chat == nil {
			return false
		}
		locked, err := l.store.IsLocked(msg.Chat.ID, msg.From.ID)
		if err != nil || !locked {
			return false
		}
		ref := telegram.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
		if err := t.DeleteMessage(ctx, ref); err != nil {
			l.log.Debug().Err(err).Int64("user_id", msg.From.ID).Msg("could not delete locked user's message")
		}
		return true
	})
	return nil
}

func (l *Lock) Handle(ctx context.Context, c *command.Context) error {
	switch c.Command {
	case "/lock":
		return l.lock(ctx, c)
	case "/unlock":
		return l.unlock(ctx, c)
	case "/locklist":
		return l.list(ctx, c)
	default:
		return fmt.Errorf("lock: unexpected command %q", c.Command)
	}
}

// targetUser resolves the user a moderation command aims at: a reply
// takes priority, then a numeric id argument.
func targetUser(c *command.Context) (int64, bool) {
	if r := c.Message.ReplyToMessage; r != nil && r.From != nil {
		return r.From.ID, true
	}
	if len(c.Args) > 0 {
		if id, err := strconv.ParseInt(strings.TrimPrefix(c.Args[0], "@"), 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

func (l *Lock) lock(ctx context.Context, c *command.Context) error {
	userID, ok := targetUser(c)
	if !ok {
		return c.Reply(ctx, "❌ Reply to a user or pass a user id to lock")
	}

	// With a reply target every argument is reason text; with an id
	// argument the reason starts after it.
	reason := "Locked by admin"
	if c.Message.ReplyToMessage != nil {
		if len(c.Args) > 0 {
			reason = strings.Join(c.Args, " ")
		}
	} else if len(c.Args) > 1 {
		reason = strings.Join(c.Args[1:], " ")
	}

	if err := l.store.LockUser(c.Message.Chat.ID, userID, reason); err != nil {
		return fmt.Errorf("lock user %d: %w", userID, err)
	}
	l.log.Info().Int64("chat_id", c.Message.Chat.ID).Int64("user_id", userID).Str("reason", reason).Msg("user locked")
	return c.Reply(ctx, fmt.Sprintf("🔒 User %d has been locked\nReason: %s", userID, reason))
}

func (l *Lock) unlock(ctx context.Context, c *command.Context) error {
	userID, ok := targetUser(c)
	if !ok {
		return c.Reply(ctx, "Usage: /unlock <user_id>")
	}

	removed, err := l.store.UnlockUser(c.Message.Chat.ID, userID)
	if err != nil {
		return fmt.Errorf("unlock user %d: %w", userID, err)
	}
	if !removed {
		return c.Reply(ctx, "❌ User not found in lock list")
	}
	l.log.Info().Int64("chat_id", c.Message.Chat.ID).Int64("user_id", userID).Msg("user unlocked")
	return c.Reply(ctx, fmt.Sprintf("🔓 User %d unlocked", userID))
}

func (l *Lock) list(ctx context.Context, c *command.Context) error {
	locks, err := l.store.LockedUsers(c.Message.Chat.ID)
	if err != nil {
		return fmt.Errorf("list locks: %w", err)
	}
	if len(locks) == 0 {
		return c.Reply(ctx, "No locked users in this chat")
	}

	var b strings.Builder
	b.WriteString("🔒 **Locked users**\n\n")
	for _, rec := range locks {
		b.WriteString(fmt.Sprintf("• `%d` — %s\n", rec.UserID, rec.Reason))
	}
	return c.Reply(ctx, branding.WrapHeader(b.String()))
}
