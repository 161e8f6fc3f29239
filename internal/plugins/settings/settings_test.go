package settings

import (
	"context"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/privacy"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/storage"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

type fakeTransport struct {
	replies []string
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, _ string) (telegram.MessageRef, error) {
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

func newTestApp(t *testing.T, privacyEnabled bool) (*command.App, *fakeTransport) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tr := &fakeTransport{}
	return &command.App{
		Log:       zerolog.Nop(),
		Transport: tr,
		Storage:   store,
		Privacy:   privacy.New(privacyEnabled, store, zerolog.Nop()),
	}, tr
}

func cmdContext(app *command.App, tr *fakeTransport, cmd string, args []string) *command.Context {
	return &command.Context{
		Transport: tr,
		Message: &tgbotapi.Message{
			MessageID: 7,
			From:      &tgbotapi.User{ID: 2},
			Chat:      &tgbotapi.Chat{ID: 100, Type: "supergroup"},
		},
		Command: cmd,
		Args:    args,
		App:     app,
	}
}

func TestPrivacyToggle(t *testing.T) {
	app, tr := newTestApp(t, true)
	s := &Settings{}

	require.NoError(t, s.Handle(context.Background(),
		cmdContext(app, tr, ".privacy", []string{"on"})))
	assert.True(t, app.Privacy.IsSilent(100))

	require.NoError(t, s.Handle(context.Background(),
		cmdContext(app, tr, ".privacy", []string{"off"})))
	assert.False(t, app.Privacy.IsSilent(100))
}

func TestPrivacyStatus(t *testing.T) {
	app, tr := newTestApp(t, true)
	s := &Settings{}

	require.NoError(t, s.Handle(context.Background(),
		cmdContext(app, tr, ".privacy", nil)))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "Silent mode is off")
}

func TestPrivacyDisabled(t *testing.T) {
	app, tr := newTestApp(t, false)
	s := &Settings{}

	require.NoError(t, s.Handle(context.Background(),
		cmdContext(app, tr, ".privacy", []string{"on"})))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "disabled")
}

func TestReload(t *testing.T) {
	app, tr := newTestApp(t, false)
	app.Reload = func(context.Context) (int, int) { return 4, 1 }
	s := &Settings{}

	require.NoError(t, s.Handle(context.Background(),
		cmdContext(app, tr, ".reload", nil)))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "4 loaded, 1 failed")
}

func TestReloadUnavailable(t *testing.T) {
	app, tr := newTestApp(t, false)
	s := &Settings{}

	require.NoError(t, s.Handle(context.Background(),
		cmdContext(app, tr, ".reload", nil)))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "not available")
}
