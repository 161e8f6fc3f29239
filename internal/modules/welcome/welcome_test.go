package welcome

import (
	"context"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/config"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

type fakeTransport struct {
	sent    []string
	replies []string
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string) (telegram.MessageRef, error) {
	f.sent = append(f.sent, text)
	return telegram.MessageRef{ChatID: chatID}, nil
}

func (f *fakeTransport) ReplyMessage(_ context.Context, chatID int64, replyTo int, text string) (telegram.MessageRef, error) {
	f.replies = append(f.replies, text)
	return telegram.MessageRef{ChatID: chatID, MessageID: replyTo + 1}, nil
}

func (f *fakeTransport) EditMessage(context.Context, telegram.MessageRef, string) error { return nil }
func (f *fakeTransport) DeleteMessage(context.Context, telegram.MessageRef) error       { return nil }

func (f *fakeTransport) GetChatAdministrators(context.Context, int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeTransport) BotUsername() string { return "vbot" }

func newTestWelcome(t *testing.T) (*Welcome, *command.App, *fakeTransport) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tr := &fakeTransport{}
	app := &command.App{
		Config:    &config.Config{EnableWelcomeSystem: true},
		Log:       zerolog.Nop(),
		Transport: tr,
		Storage:   store,
		Registry:  command.NewRegistry(zerolog.Nop()),
	}
	w := &Welcome{}
	require.NoError(t, w.Setup(context.Background(), app))
	return w, app, tr
}

func cmdContext(tr *fakeTransport, cmd string, args []string) *command.Context {
	return &command.Context{
		Transport: tr,
		Message: &tgbotapi.Message{
			MessageID: 7,
			From:      &tgbotapi.User{ID: 2},
			Chat:      &tgbotapi.Chat{ID: 100, Type: "supergroup"},
		},
		Command: cmd,
		Args:    args,
	}
}

func TestSetAndShow(t *testing.T) {
	w, _, tr := newTestWelcome(t)

	require.NoError(t, w.Handle(context.Background(),
		cmdContext(tr, ".setwelcome", []string{"Hello", "{name}!"})))
	require.NoError(t, w.Handle(context.Background(), cmdContext(tr, ".welcome", nil)))

	require.Len(t, tr.replies, 2)
	assert.Contains(t, tr.replies[1], "Hello {name}!")
}

func TestSetEmptyClears(t *testing.T) {
	w, app, tr := newTestWelcome(t)
	require.NoError(t, app.Storage.SetWelcome(100, "old"))

	require.NoError(t, w.Handle(context.Background(), cmdContext(tr, ".setwelcome", nil)))

	text, err := app.Storage.Welcome(100)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Contains(t, tr.replies[0], "cleared")
}

func TestJoinGreetsWithNameSubstitution(t *testing.T) {
	_, app, tr := newTestWelcome(t)
	require.NoError(t, app.Storage.SetWelcome(100, "Welcome {name}, read the rules"))
	require.Len(t, app.JoinHandlers(), 1)
	join := app.JoinHandlers()[0]

	join(context.Background(), tr, 100, tgbotapi.User{ID: 5, FirstName: "Alice"})
	join(context.Background(), tr, 100, tgbotapi.User{ID: 6, FirstName: "Bob", UserName: "bob"})

	require.Len(t, tr.sent, 2)
	assert.Equal(t, "Welcome Alice, read the rules", tr.sent[0])
	assert.Equal(t, "Welcome @bob, read the rules", tr.sent[1], "username preferred over first name")
}

func TestJoinSilentWithoutWelcomeText(t *testing.T) {
	_, app, tr := newTestWelcome(t)
	join := app.JoinHandlers()[0]

	join(context.Background(), tr, 100, tgbotapi.User{ID: 5, FirstName: "Alice"})
	assert.Empty(t, tr.sent)
}
