// Package privacy decides when the bot answers a user privately instead
// of in the chat the command arrived in: direct messages always, chats
// flagged silent, and a configurable set of sensitive commands.
package privacy

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

type Manager struct {
	enabled bool
	store   *storage.Storage
	log     zerolog.Logger

	mu              sync.Mutex
	privateCommands map[string]struct{}
}

// New builds a Manager. store may persist silent-chat flags across
// restarts; the private-command set starts with the sensitive defaults.
func New(enabled bool, store *storage.Storage, log zerolog.Logger) *Manager {
	return &Manager{
		enabled: enabled,
		store:   store,
		log:     log.With().Str("component", "privacy").Logger(),
		privateCommands: map[string]struct{}{
			".setwelcome": {}, ".privacy": {}, ".stats": {},
			"/lock": {}, "/unlock": {}, "/ctag": {},
		},
	}
}

// Enabled reports whether the privacy system is active at all.
func (m *Manager) Enabled() bool { return m.enabled }

// ShouldAnswerPrivately reports whether the reply to msg must go to the
// sender directly rather than into the chat.
func (m *Manager) ShouldAnswerPrivately(msg *tgbotapi.Message) bool {
	if !m.enabled || msg == nil {
		return false
	}
	if msg.Chat != nil && msg.Chat.IsPrivate() {
		return true
	}
	if msg.Chat != nil && m.store != nil {
		if silent, err := m.store.IsSilent(msg.Chat.ID); err == nil && silent {
			return true
		}
	}
	if fields := strings.Fields(msg.Text); len(fields) > 0 {
		token := strings.ToLower(fields[0])
		if at := strings.IndexByte(token, '@'); at >= 0 {
			token = token[:at]
		}
		m.mu.Lock()
		_, private := m.privateCommands[token]
		m.mu.Unlock()
		return private
	}
	return false
}

// Deliver sends text as the answer to msg, privately when the policy says
// so. In the private case the triggering command is deleted from the
// group, best effort.
func (m *Manager) Deliver(ctx context.Context, t telegram.Transport, msg *tgbotapi.Message, text string) error {
	if !m.ShouldAnswerPrivately(msg) {
		_, err := t.ReplyMessage(ctx, msg.Chat.ID, msg.MessageID, text)
		return err
	}

	if _, err := t.SendMessage(ctx, msg.From.ID, text); err != nil {
		return err
	}
	if msg.Chat != nil && !msg.Chat.IsPrivate() {
		ref := telegram.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
		if err := t.DeleteMessage(ctx, ref); err != nil {
			m.log.Debug().Err(err).Int64("chat_id", msg.Chat.ID).Msg("could not delete command message")
		}
	}
	return nil
}

// SetSilent flags or unflags a chat for silent operation.
func (m *Manager) SetSilent(chatID int64, silent bool) error {
	if m.store == nil {
		return nil
	}
	return m.store.SetSilent(chatID, silent)
}

// IsSilent reports whether a chat is flagged silent.
func (m *Manager) IsSilent(chatID int64) bool {
	if m.store == nil {
		return false
	}
	silent, err := m.store.IsSilent(chatID)
	return err == nil && silent
}

// AddPrivateCommand marks a command as private-answer.
func (m *Manager) AddPrivateCommand(name string) {
	m.mu.Lock()
	m.privateCommands[strings.ToLower(name)] = struct{}{}
	m.mu.Unlock()
}

// RemovePrivateCommand unmarks a command.
func (m *Manager) RemovePrivateCommand(name string) {
	m.mu.Lock()
	delete(m.privateCommands, strings.ToLower(name))
	m.mu.Unlock()
}
