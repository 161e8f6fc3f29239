// Package tag implements mass mentions: /tag walks the chat's observed
// member roster in small batches so every member gets notified without
// tripping flood control; /ctag cancels a running job.
//
// The Bot API cannot enumerate chat members, so the roster is built from
// sightings: every message sender and every join is remembered, leavers
// are forgotten.
package tag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/plugin"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
	"github.com/VanZoel112/vzoelupgrade-sub000/pkg/retrylimit"
)

const batchSize = 5

func init() {
	plugin.Add(func() plugin.Extension { return &Tag{} })
}

type Tag struct {
	store   *storage.Storage
	limiter *retrylimit.AdaptiveLimiter
	log     zerolog.Logger

	mu   sync.Mutex
	jobs map[int64]context.CancelFunc
}

func (t *Tag) Name() string { return "tag" }

func (t *Tag) Commands() []string {
	return []string{"/tag", "/ctag"}
}

func (t *Tag) Setup(ctx context.Context, app *command.App) error {
	if !app.Config.EnableTagSystem {
		return fmt.Errorf("tag system disabled by configuration")
	}
	t.store = app.Storage
	t.limiter = retrylimit.NewAdaptiveLimiter(1, 0.2, 2, 0.2, 0.5)
	t.log = app.Log.With().Str("component", "tag").Logger()
	t.jobs = map[int64]context.CancelFunc{}

	app.OnMessage(func(ctx context.Context, tr telegram.Transport, msg *tgbotapi.Message) bool {
		if msg.From != nil && msg.Chat != nil && !msg.Chat.IsPrivate() {
			if err := t.store.RememberMember(msg.Chat.ID, msg.From.ID, msg.From.UserName); err != nil {
				t.log.Debug().Err(err).Msg("could not update roster")
			}
		}
		return false
	})
	app.OnJoin(func(ctx context.Context, tr telegram.Transport, chatID int64, user tgbotapi.User) {
		if err := t.store.RememberMember(chatID, user.ID, user.UserName); err != nil {
			t.log.Debug().Err(err).Msg("could not update roster")
		}
	})
	app.OnLeave(func(ctx context.Context, tr telegram.Transport, chatID int64, user tgbotapi.User) {
		if err := t.store.ForgetMember(chatID, user.ID); err != nil {
			t.log.Debug().Err(err).Msg("could not update roster")
		}
	})
	return nil
}

func (t *Tag) Handle(ctx context.Context, c *command.Context) error {
	switch c.Command {
	case "/tag":
		return t.start(ctx, c)
	case "/ctag":
		return t.cancel(ctx, c)
	default:
		return fmt.Errorf("tag: unexpected command %q", c.Command)
	}
}

func (t *Tag) start(ctx context.Context, c *command.Context) error {
	if len(c.Args) == 0 {
		return c.Reply(ctx, "Usage: /tag <message>")
	}
	chatID := c.Message.Chat.ID

	members, err := t.store.Members(chatID)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	if len(members) == 0 {
		return c.Reply(ctx, "🏷️ I have not seen any members in this chat yet")
	}

	t.mu.Lock()
	if _, running := t.jobs[chatID]; running {
		t.mu.Unlock()
		return c.Reply(ctx, "❌ A tag process is already running in this chat")
	}
	// Detach from the invocation's lifetime; the job outlives dispatch.
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.jobs[chatID] = cancel
	t.mu.Unlock()

	text := strings.Join(c.Args, " ")
	go t.run(jobCtx, c.Transport, chatID, text, members)

	return c.Reply(ctx, fmt.Sprintf("🏷️ Tagging %d members...", len(members)))
}

func (t *Tag) run(ctx context.Context, tr telegram.Transport, chatID int64, text string, members []storage.RosterEntry) {
	defer func() {
		t.mu.Lock()
		delete(t.jobs, chatID)
		t.mu.Unlock()
	}()

	started := time.Now()
	for i := 0; i < len(members); i += batchSize {
		end := i + batchSize
		if end > len(members) {
			end = len(members)
		}

		var b strings.Builder
		b.WriteString(text)
		b.WriteString("\n")
		for _, m := range members[i:end] {
			if m.Username != "" {
				fmt.Fprintf(&b, " @%s", m.Username)
			} else {
				fmt.Fprintf(&b, " [%d](tg://user?id=%d)", m.UserID, m.UserID)
			}
		}

		err := retrylimit.WithRetry(ctx, t.limiter, 3, time.Second, func() error {
			_, serr := tr.SendMessage(ctx, chatID, b.String())
			return serr
		})
		if err != nil {
			if ctx.Err() != nil {
				t.log.Info().Int64("chat_id", chatID).Msg("tag job canceled")
				return
			}
			t.log.Warn().Err(err).Int64("chat_id", chatID).Msg("tag batch failed, stopping job")
			return
		}
	}
	t.log.Info().
		Int64("chat_id", chatID).
		Int("members", len(members)).
		Dur("elapsed", time.Since(started)).
		Msg("tag job finished")
}

func (t *Tag) cancel(ctx context.Context, c *command.Context) error {
	chatID := c.Message.Chat.ID
	t.mu.Lock()
	cancel, running := t.jobs[chatID]
	t.mu.Unlock()

	if !running {
		return c.Reply(ctx, "No tag process running in this chat")
	}
	cancel()
	return c.Reply(ctx, "🏷️ Tag process canceled")
}

// StopAll cancels every running job; called on shutdown.
func (t *Tag) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for chatID, cancel := range t.jobs {
		cancel()
		delete(t.jobs, chatID)
	}
}
