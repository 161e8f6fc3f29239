package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config holds everything the bot reads from the environment.
type Config struct {
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`

	OwnerID      int64   `env:"OWNER_ID"`
	DeveloperIDs []int64 `env:"DEVELOPER_IDS" envSeparator:","`
	// Chats whose members are all treated as chat admins, no lookup needed.
	AdminChatIDs []int64 `env:"ADMIN_CHAT_IDS" envSeparator:","`

	DeveloperPrefix string `env:"DEVELOPER_PREFIX" envDefault:"."`
	AdminPrefix     string `env:"ADMIN_PREFIX" envDefault:"/"`
	PublicPrefix    string `env:"PUBLIC_PREFIX" envDefault:"#"`

	AdminCacheTTL time.Duration `env:"ADMIN_CACHE_TTL" envDefault:"300s"`

	LogChannelID int64  `env:"LOG_CHANNEL_ID"`
	LogFilePath  string `env:"LOG_FILE_PATH" envDefault:"logs/vbot.log"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	OplogPath    string `env:"OPLOG_PATH" envDefault:"data/oplog.db"`

	EnablePublicCommands bool `env:"ENABLE_PUBLIC_COMMANDS" envDefault:"true"`
	EnablePrivacySystem  bool `env:"ENABLE_PRIVACY_SYSTEM" envDefault:"false"`
	EnableLockSystem     bool `env:"ENABLE_LOCK_SYSTEM" envDefault:"true"`
	EnableWelcomeSystem  bool `env:"ENABLE_WELCOME_SYSTEM" envDefault:"true"`
	EnableTagSystem      bool `env:"ENABLE_TAG_SYSTEM" envDefault:"true"`

	EnabledPlugins  []string `env:"ENABLED_PLUGINS" envSeparator:","`
	DisabledPlugins []string `env:"DISABLED_PLUGINS" envSeparator:","`
}

// New parses the environment into a Config and validates it.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	prefixes := []struct{ name, val string }{
		{"DEVELOPER_PREFIX", c.DeveloperPrefix},
		{"ADMIN_PREFIX", c.AdminPrefix},
		{"PUBLIC_PREFIX", c.PublicPrefix},
	}
	seen := map[string]string{}
	for _, p := range prefixes {
		if len(p.val) != 1 {
			return fmt.Errorf("%s must be a single character, got %q", p.name, p.val)
		}
		if other, dup := seen[p.val]; dup {
			return fmt.Errorf("%s and %s are both %q", p.name, other, p.val)
		}
		seen[p.val] = p.name
	}
	if c.AdminCacheTTL <= 0 {
		return fmt.Errorf("ADMIN_CACHE_TTL must be positive, got %s", c.AdminCacheTTL)
	}
	return nil
}

// IsOwner reports whether id is the configured owner.
func (c *Config) IsOwner(id int64) bool {
	return c.OwnerID != 0 && id == c.OwnerID
}

// IsDeveloper reports whether id is in the configured developer set.
func (c *Config) IsDeveloper(id int64) bool {
	for _, d := range c.DeveloperIDs {
		if d == id {
			return true
		}
	}
	return false
}
