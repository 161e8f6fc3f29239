package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_ID", "1")
	t.Setenv("DEVELOPER_IDS", "2,3")
}

func TestNewDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, int64(1), cfg.OwnerID)
	assert.Equal(t, []int64{2, 3}, cfg.DeveloperIDs)
	assert.Equal(t, ".", cfg.DeveloperPrefix)
	assert.Equal(t, "/", cfg.AdminPrefix)
	assert.Equal(t, "#", cfg.PublicPrefix)
	assert.Equal(t, 300*time.Second, cfg.AdminCacheTTL)
	assert.True(t, cfg.EnablePublicCommands)
	assert.False(t, cfg.EnablePrivacySystem)
}

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	_, err := New()
	assert.Error(t, err)
}

func TestValidatePrefixes(t *testing.T) {
	setBaseEnv(t)

	t.Setenv("ADMIN_PREFIX", "##")
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single character")

	t.Setenv("ADMIN_PREFIX", "#")
	_, err = New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}

func TestValidateTTL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ADMIN_CACHE_TTL", "0s")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_CACHE_TTL")
}

func TestRoleHelpers(t *testing.T) {
	cfg := &Config{OwnerID: 1, DeveloperIDs: []int64{2}}

	assert.True(t, cfg.IsOwner(1))
	assert.False(t, cfg.IsOwner(2))
	assert.True(t, cfg.IsDeveloper(2))
	assert.False(t, cfg.IsDeveloper(1))

	// Owner id zero means "unset", not "user 0 is owner".
	assert.False(t, (&Config{}).IsOwner(0))
}
