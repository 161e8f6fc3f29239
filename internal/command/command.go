// Package command defines the transport-facing command contract: a handler
// is a function, the registry maps normalized command names to the handler
// that owns them, and Context is what a handler gets to work with.
package command

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

// HandlerFunc executes one command invocation. Returning an error routes
// the invocation through the pipeline's fault path.
type HandlerFunc func(ctx context.Context, c *Context) error

// Context carries per-invocation input into a handler.
type Context struct {
	Transport telegram.Transport
	Message   *tgbotapi.Message
	Command   string   // normalized token, e.g. "/lock"
	Args      []string // tokens after the command, original casing

	App *App

	// Status is the acknowledgement placeholder the pipeline sent for
	// this invocation, nil when the command was dispatched without one.
	// Handlers edit it instead of sending a second reply.
	Status *telegram.MessageRef
}

// Reply answers in the invocation's chat, reusing the acknowledgement
// placeholder when one exists.
func (c *Context) Reply(ctx context.Context, text string) error {
	if c.Status != nil {
		return c.Transport.EditMessage(ctx, *c.Status, text)
	}
	_, err := c.Transport.ReplyMessage(ctx, c.Message.Chat.ID, c.Message.MessageID, text)
	return err
}

// Normalize lower-cases a command token and strips any "@botname"
// addressing suffix, so "/Play@somebot" and "/play" match identically.
func Normalize(token string) string {
	token = strings.ToLower(token)
	if at := strings.IndexByte(token, '@'); at >= 0 {
		token = token[:at]
	}
	return token
}
