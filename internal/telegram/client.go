package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/pkg/retrylimit"
)

// Client implements Transport over the Bot API. All outbound calls are
// paced through an adaptive limiter so a burst of replies cannot trip
// Telegram's flood control.
type Client struct {
	api     *tgbotapi.BotAPI
	limiter *retrylimit.AdaptiveLimiter
	log     zerolog.Logger
}

// NewClient authorizes against the Bot API and returns a ready client.
func NewClient(token string, log zerolog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	c := &Client{
		api:     api,
		limiter: retrylimit.NewAdaptiveLimiter(20, 1, 30, 1, 0.5),
		log:     log.With().Str("component", "telegram").Logger(),
	}
	c.log.Info().Str("username", api.Self.UserName).Msg("authorized")
	return c, nil
}

// BotUsername returns the username the bot authorized as, without the "@".
func (c *Client) BotUsername() string {
	return c.api.Self.UserName
}

func (c *Client) send(ctx context.Context, m tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}
	sent, err := c.api.Send(m)
	if err != nil {
		c.limiter.RateLimited()
		return tgbotapi.Message{}, err
	}
	c.limiter.Success()
	return sent, nil
}

// SendMessage sends a Markdown message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := c.send(ctx, msg)
	if err != nil {
		return MessageRef{}, fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// ReplyMessage sends a Markdown reply to a specific message.
func (c *Client) ReplyMessage(ctx context.Context, chatID int64, replyTo int, text string) (MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyTo
	sent, err := c.send(ctx, msg)
	if err != nil {
		return MessageRef{}, fmt.Errorf("reply in chat %d: %w", chatID, err)
	}
	return MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// EditMessage replaces the text of a previously sent message.
func (c *Client) EditMessage(ctx context.Context, ref MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.send(ctx, edit); err != nil {
		return fmt.Errorf("edit message %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

// DeleteMessage removes a message. Telegram rejects deletes of foreign
// messages in chats where the bot lacks rights; callers treat that as
// best effort.
func (c *Client) DeleteMessage(ctx context.Context, ref MessageRef) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return fmt.Errorf("delete message %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

// GetChatAdministrators fetches the user ids of a chat's administrators.
func (c *Client) GetChatAdministrators(ctx context.Context, chatID int64) ([]int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	admins, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("get administrators of chat %d: %w", chatID, err)
	}
	ids := make([]int64, 0, len(admins))
	for _, a := range admins {
		if a.User != nil {
			ids = append(ids, a.User.ID)
		}
	}
	return ids, nil
}

// Run long-polls for updates and hands each one to the handler in its own
// goroutine, until the context is canceled.
func (c *Client) Run(ctx context.Context, handler UpdateHandler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.api.GetUpdatesChan(u)

	c.log.Info().Msg("update loop started")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			go handler.HandleUpdate(ctx, upd)
		}
	}
}
