package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageRef identifies a message the bot sent and may later edit or delete.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Transport is the narrow surface of the Telegram API the rest of the bot
// is allowed to touch. Tests substitute a fake.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (MessageRef, error)
	ReplyMessage(ctx context.Context, chatID int64, replyTo int, text string) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, text string) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	GetChatAdministrators(ctx context.Context, chatID int64) ([]int64, error)
	BotUsername() string
}

// UpdateHandler consumes raw updates from the long-poll loop. The dispatch
// pipeline is the only production implementation.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}
