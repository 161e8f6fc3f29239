package command

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/auth"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/config"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/oplog"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/privacy"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

// MessageHook runs for every inbound text message before command
// dispatch. Returning true swallows the message entirely.
type MessageHook func(ctx context.Context, t telegram.Transport, msg *tgbotapi.Message) bool

// MemberHandler reacts to users joining or leaving a chat.
type MemberHandler func(ctx context.Context, t telegram.Transport, chatID int64, user tgbotapi.User)

// App is the shared application handle passed to extensions at load time.
// Hook registration happens during the load phase only; the dispatch loop
// reads the hook slices without locking afterwards.
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Transport telegram.Transport
	Storage   *storage.Storage
	Privacy   *privacy.Manager
	Registry  *Registry
	Auth      *auth.Resolver
	Oplog     oplog.Recorder

	StartedAt time.Time

	// Reload is wired by main to re-run extension discovery; nil until
	// the loader exists.
	Reload func(ctx context.Context) (loaded, failed int)

	messageHooks []MessageHook
	joinHandlers []MemberHandler
	leftHandlers []MemberHandler
}

// OnMessage registers a pre-dispatch message hook.
func (a *App) OnMessage(h MessageHook) {
	a.messageHooks = append(a.messageHooks, h)
}

// OnJoin registers a handler for members entering a chat.
func (a *App) OnJoin(h MemberHandler) {
	a.joinHandlers = append(a.joinHandlers, h)
}

// OnLeave registers a handler for members leaving a chat.
func (a *App) OnLeave(h MemberHandler) {
	a.leftHandlers = append(a.leftHandlers, h)
}

// MessageHooks returns the registered pre-dispatch hooks.
func (a *App) MessageHooks() []MessageHook { return a.messageHooks }

// JoinHandlers returns the registered join handlers.
func (a *App) JoinHandlers() []MemberHandler { return a.joinHandlers }

// LeaveHandlers returns the registered leave handlers.
func (a *App) LeaveHandlers() []MemberHandler { return a.leftHandlers }
