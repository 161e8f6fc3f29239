package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLockUnlock(t *testing.T) {
	s := newTestStorage(t)

	locked, err := s.IsLocked(100, 42)
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, s.LockUser(100, 42, "spam"))
	locked, err = s.IsLocked(100, 42)
	require.NoError(t, err)
	assert.True(t, locked)

	// Lock state is per chat.
	locked, err = s.IsLocked(200, 42)
	require.NoError(t, err)
	assert.False(t, locked)

	removed, err := s.UnlockUser(100, 42)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.UnlockUser(100, 42)
	require.NoError(t, err)
	assert.False(t, removed, "unlocking twice reports absence")
}

func TestLockedUsers(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.LockUser(100, 42, "spam"))
	require.NoError(t, s.LockUser(100, 43, ""))

	locks, err := s.LockedUsers(100)
	require.NoError(t, err)
	require.Len(t, locks, 2)

	ids := []int64{locks[0].UserID, locks[1].UserID}
	assert.ElementsMatch(t, []int64{42, 43}, ids)
}

func TestWelcomeText(t *testing.T) {
	s := newTestStorage(t)

	text, err := s.Welcome(100)
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, s.SetWelcome(100, "Hi {name}!"))
	text, err = s.Welcome(100)
	require.NoError(t, err)
	assert.Equal(t, "Hi {name}!", text)

	require.NoError(t, s.SetWelcome(100, ""))
	text, err = s.Welcome(100)
	require.NoError(t, err)
	assert.Empty(t, text, "empty text clears the welcome")
}

func TestSilentFlag(t *testing.T) {
	s := newTestStorage(t)

	silent, err := s.IsSilent(100)
	require.NoError(t, err)
	assert.False(t, silent)

	require.NoError(t, s.SetSilent(100, true))
	silent, err = s.IsSilent(100)
	require.NoError(t, err)
	assert.True(t, silent)
}

func TestRoster(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.RememberMember(100, 42, "alice"))
	require.NoError(t, s.RememberMember(100, 43, ""))

	members, err := s.Members(100)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// Re-seeing a member updates in place, no duplicate entry.
	require.NoError(t, s.RememberMember(100, 42, "alice_renamed"))
	members, err = s.Members(100)
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, s.ForgetMember(100, 42))
	members, err = s.Members(100)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(43), members[0].UserID)
}

func TestRecordSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.LockUser(100, 42, "spam"))
	require.NoError(t, s.SetWelcome(100, "hello"))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	locked, err := s.IsLocked(100, 42)
	require.NoError(t, err)
	assert.True(t, locked)
	text, err := s.Welcome(100)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestTrackedChats(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetSilent(100, true))
	require.NoError(t, s.SetWelcome(200, "hi"))

	assert.Equal(t, 2, s.TrackedChats())
}
