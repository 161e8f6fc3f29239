// Package dispatch receives every inbound update, classifies the command
// prefix, asks the role resolver for an authorization decision, resolves
// the handler (static route table first, registry second), and carries
// the invocation through acknowledgement, execution, and finalization.
//
// Per message the pipeline walks Received → Classified → (Denied |
// Authorized) → [Acknowledging] → Executing → (Completed | Failed) →
// Finalized.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/auth"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/branding"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/oplog"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

// Pipeline ties the role resolver, the command registry, and the
// transport together. One pipeline serves all chats; shared state is
// mutex-guarded because updates are handled on separate goroutines.
type Pipeline struct {
	app   *command.App
	oplog oplog.Recorder
	log   zerolog.Logger

	routes map[string]command.HandlerFunc
	ack    map[string]struct{}

	mu          sync.Mutex
	invocations map[int]*Invocation
}

// New builds a pipeline over the shared application handle.
func New(app *command.App, recorder oplog.Recorder) *Pipeline {
	if recorder == nil {
		recorder = oplog.Nop{}
	}
	return &Pipeline{
		app:         app,
		oplog:       recorder,
		log:         app.Log.With().Str("component", "dispatch").Logger(),
		routes:      map[string]command.HandlerFunc{},
		ack:         map[string]struct{}{},
		invocations: map[int]*Invocation{},
	}
}

// Route claims a name in the static built-in table. The table is
// consulted before the registry; first registration wins here too.
func (p *Pipeline) Route(name string, h command.HandlerFunc) bool {
	name = command.Normalize(name)
	if _, taken := p.routes[name]; taken {
		p.log.Warn().Str("command", name).Msg("static route already claimed")
		return false
	}
	p.routes[name] = h
	return true
}

// Acknowledge marks commands that get the phased "working" placeholder
// before their handler produces output.
func (p *Pipeline) Acknowledge(names ...string) {
	for _, name := range names {
		p.ack[command.Normalize(name)] = struct{}{}
	}
}

// HandleUpdate is the transport's entry point into the pipeline.
func (p *Pipeline) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	if len(msg.NewChatMembers) > 0 {
		for _, user := range msg.NewChatMembers {
			for _, h := range p.app.JoinHandlers() {
				h(ctx, p.app.Transport, msg.Chat.ID, user)
			}
		}
		return
	}
	if msg.LeftChatMember != nil {
		for _, h := range p.app.LeaveHandlers() {
			h(ctx, p.app.Transport, msg.Chat.ID, *msg.LeftChatMember)
		}
		return
	}

	if msg.From == nil || msg.Text == "" {
		return
	}
	if msg.From.UserName != "" && msg.From.UserName == p.app.Transport.BotUsername() {
		return
	}

	p.handleMessage(ctx, msg)
}

func (p *Pipeline) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	for _, hook := range p.app.MessageHooks() {
		if hook(ctx, p.app.Transport, msg) {
			return
		}
	}

	tier := p.app.Auth.ClassifyPrefix(msg.Text)
	if tier == auth.TierNone {
		return
	}

	fields := strings.Fields(msg.Text)
	token := command.Normalize(fields[0])
	args := fields[1:]
	userID, chatID := msg.From.ID, msg.Chat.ID

	if !p.app.Auth.Authorize(ctx, p.app.Transport, userID, chatID, msg.Text) {
		p.deny(ctx, msg, tier, token)
		return
	}

	inv := p.begin(msg.MessageID)
	defer p.finalize(msg.MessageID)

	cctx := &command.Context{
		Transport: p.app.Transport,
		Message:   msg,
		Command:   token,
		Args:      args,
		App:       p.app,
	}

	if _, slow := p.ack[token]; slow {
		inv.Status, inv.cancelAck = p.acknowledge(ctx, msg)
		cctx.Status = inv.Status
	}

	handler, known := p.resolve(token)
	if !known {
		p.log.Debug().Str("command", token).Int64("chat_id", chatID).Msg("unknown command")
		p.replyOrEdit(ctx, cctx, fmt.Sprintf("❓ Unknown command: %s", token))
		return
	}

	err := p.invoke(ctx, handler, cctx)
	if inv.cancelAck != nil {
		inv.cancelAck()
	}
	elapsed := inv.Elapsed()

	if err != nil {
		p.fail(ctx, cctx, tier, elapsed, err)
		return
	}

	p.log.Info().
		Int64("user_id", userID).
		Int64("chat_id", chatID).
		Str("command", msg.Text).
		Int64("elapsed_ms", elapsed).
		Msg("command completed")
	p.record(ctx, oplog.CommandRecord{
		UserID: userID, ChatID: chatID, Command: msg.Text,
		Success: true, ElapsedMs: elapsed,
	})
}

// resolve finds a handler for the normalized token: the static built-in
// table first, then the registry.
func (p *Pipeline) resolve(token string) (command.HandlerFunc, bool) {
	if h, ok := p.routes[token]; ok {
		return h, true
	}
	if p.app.Registry.IsHandled(token) {
		return func(ctx context.Context, c *command.Context) error {
			_, err := p.app.Registry.Dispatch(ctx, c.Command, c)
			return err
		}, true
	}
	return nil, false
}

// invoke runs the handler, converting a panic into an error at the
// pipeline boundary so one bad handler cannot take the process down.
func (p *Pipeline) invoke(ctx context.Context, h command.HandlerFunc, c *command.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, c)
}

// deny ends a classified-but-unauthorized invocation: role-specific
// message, optionally routed privately, plus a denial record.
func (p *Pipeline) deny(ctx context.Context, msg *tgbotapi.Message, tier auth.Tier, token string) {
	text := p.app.Auth.DenialMessage(tier)

	var err error
	if p.app.Privacy != nil && p.app.Privacy.Enabled() {
		err = p.app.Privacy.Deliver(ctx, p.app.Transport, msg, text)
	} else {
		_, err = p.app.Transport.ReplyMessage(ctx, msg.Chat.ID, msg.MessageID, text)
	}
	if err != nil {
		p.log.Debug().Err(err).Msg("could not deliver denial")
	}

	p.log.Warn().
		Int64("user_id", msg.From.ID).
		Int64("chat_id", msg.Chat.ID).
		Str("command", token).
		Str("tier", tier.String()).
		Msg("command denied")
	p.record(ctx, oplog.CommandRecord{
		UserID: msg.From.ID, ChatID: msg.Chat.ID, Command: msg.Text,
		Success: false, Error: "permission denied",
	})
}

// fail ends an invocation whose handler errored or panicked.
func (p *Pipeline) fail(ctx context.Context, c *command.Context, tier auth.Tier, elapsed int64, ferr error) {
	userID, chatID := c.Message.From.ID, c.Message.Chat.ID

	p.log.Error().Err(ferr).
		Int64("user_id", userID).
		Int64("chat_id", chatID).
		Str("command", c.Message.Text).
		Int64("elapsed_ms", elapsed).
		Str("tier", tier.String()).
		Msg("command failed")

	if err := p.oplog.RecordFault(ctx, oplog.FaultRecord{
		UserID: userID, ChatID: chatID, Command: c.Message.Text, Fault: ferr.Error(),
	}); err != nil {
		p.log.Warn().Err(err).Msg("could not record fault")
	}
	p.record(ctx, oplog.CommandRecord{
		UserID: userID, ChatID: chatID, Command: c.Message.Text,
		Success: false, ElapsedMs: elapsed, Error: ferr.Error(),
	})

	p.replyOrEdit(ctx, c, branding.Error(ferr.Error()))
}

// replyOrEdit prefers turning the acknowledgement placeholder into the
// final text over sending a second message.
func (p *Pipeline) replyOrEdit(ctx context.Context, c *command.Context, text string) {
	var err error
	if c.Status != nil {
		err = p.app.Transport.EditMessage(ctx, *c.Status, text)
	} else {
		_, err = p.app.Transport.ReplyMessage(ctx, c.Message.Chat.ID, c.Message.MessageID, text)
	}
	if err != nil {
		p.log.Debug().Err(err).Msg("could not deliver reply")
	}
}

func (p *Pipeline) record(ctx context.Context, rec oplog.CommandRecord) {
	if err := p.oplog.RecordCommand(ctx, rec); err != nil {
		p.log.Warn().Err(err).Msg("could not record command")
	}
}

var _ telegram.UpdateHandler = (*Pipeline)(nil)
