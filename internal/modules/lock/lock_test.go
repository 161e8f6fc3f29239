package lock

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
	replies []string
	deleted []telegram.MessageRef
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string) (telegram.MessageRef, error) {
	return telegram.MessageRef{ChatID: chatID}, nil
}

func (f *fakeTransport) ReplyMessage(_ context.Context, chatID int64, replyTo int, text string) (telegram.MessageRef, error) {
	f.replies = append(f.replies, text)
	return telegram.MessageRef{ChatID: chatID, MessageID: replyTo + 1}, nil
}

func (f *fakeTransport) EditMessage(context.Context, telegram.MessageRef, string) error { return nil }

func (f *fakeTransport) DeleteMessage(_ context.Context, ref telegram.MessageRef) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeTransport) GetChatAdministrators(context.Context, int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeTransport) BotUsername() string { return "vbot" }

func newTestLock(t *testing.T) (*Lock, *command.App, *fakeTransport) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tr := &fakeTransport{}
	app := &command.App{
		Config:    &config.Config{EnableLockSystem: true},
		Log:       zerolog.Nop(),
		Transport: tr,
		Storage:   store,
		Registry:  command.NewRegistry(zerolog.Nop()),
	}
	l := &Lock{}
	require.NoError(t, l.Setup(context.Background(), app))
	return l, app, tr
}

func cmdContext(tr *fakeTransport, cmd string, args []string, reply *tgbotapi.Message) *command.Context {
	return &command.Context{
		Transport: tr,
		Message: &tgbotapi.Message{
			MessageID:      7,
			From:           &tgbotapi.User{ID: 2},
			Chat:           &tgbotapi.Chat{ID: 100, Type: "supergroup"},
			ReplyToMessage: reply,
		},
		Command: cmd,
		Args:    args,
	}
}

func TestSetupRequiresEnable(t *testing.T) {
	l := &Lock{}
	err := l.Setup(context.Background(), &command.App{Config: &config.Config{}})
	assert.Error(t, err)
}

func TestLockByReply(t *testing.T) {
	l, app, tr := newTestLock(t)

	target := &tgbotapi.Message{From: &tgbotapi.User{ID: 42}}
	require.NoError(t, l.Handle(context.Background(),
		cmdContext(tr, "/lock", []string{"spamming", "links"}, target)))

	locked, err := app.Storage.IsLocked(100, 42)
	require.NoError(t, err)
	assert.True(t, locked)
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "locked")
	assert.Contains(t, tr.replies[0], "spamming links")
}

func TestLockByID(t *testing.T) {
	l, app, tr := newTestLock(t)

	require.NoError(t, l.Handle(context.Background(),
		cmdContext(tr, "/lock", []string{"42"}, nil)))

	locked, err := app.Storage.IsLocked(100, 42)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestLockWithoutTarget(t *testing.T) {
	l, _, tr := newTestLock(t)

	require.NoError(t, l.Handle(context.Background(), cmdContext(tr, "/lock", nil, nil)))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "Reply to a user")
}

func TestUnlock(t *testing.T) {
	l, app, tr := newTestLock(t)
	require.NoError(t, app.Storage.LockUser(100, 42, "spam"))

	require.NoError(t, l.Handle(context.Background(),
		cmdContext(tr, "/unlock", []string{"42"}, nil)))

	locked, err := app.Storage.IsLocked(100, 42)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestUnlockUnknownUser(t *testing.T) {
	l, _, tr := newTestLock(t)

	require.NoError(t, l.Handle(context.Background(),
		cmdContext(tr, "/unlock", []string{"42"}, nil)))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "not found")
}

func TestLockList(t *testing.T) {
	l, app, tr := newTestLock(t)
	require.NoError(t, app.Storage.LockUser(100, 42, "spam"))

	require.NoError(t, l.Handle(context.Background(), cmdContext(tr, "/locklist", nil, nil)))
	require.NotEmpty(t, tr.replies)
	assert.Contains(t, tr.replies[0], "42")
	assert.Contains(t, tr.replies[0], "spam")
}

func TestHookDeletesLockedUsersMessages(t *testing.T) {
	_, app, tr := newTestLock(t)
	require.NoError(t, app.Storage.LockUser(100, 42, "spam"))
	require.Len(t, app.MessageHooks(), 1)
	hook := app.MessageHooks()[0]

	lockedMsg := &tgbotapi.Message{
		MessageID: 9,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      "hello",
	}
	assert.True(t, hook(context.Background(), tr, lockedMsg), "message must be swallowed")
	require.Len(t, tr.deleted, 1)
	assert.Equal(t, telegram.MessageRef{ChatID: 100, MessageID: 9}, tr.deleted[0])

	freeMsg := &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 43},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      "hi",
	}
	assert.False(t, hook(context.Background(), tr, freeMsg))
	assert.Len(t, tr.deleted, 1)
}
