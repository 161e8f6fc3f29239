// Package auth resolves users to privilege tiers and gates command
// execution on them. Authorization never returns an error: any internal
// fault degrades to a denial, never to a grant.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/config"
)

// AdminFetcher is the slice of the transport the resolver needs.
type AdminFetcher interface {
	GetChatAdministrators(ctx context.Context, chatID int64) ([]int64, error)
}

type cacheEntry struct {
	members   map[int64]struct{}
	fetchedAt time.Time
}

// Resolver answers privilege questions. It owns the time-bounded cache of
// chat-admin membership; nothing else may touch the cache.
type Resolver struct {
	ownerID      int64
	developers   map[int64]struct{}
	adminChats   map[int64]struct{}
	enablePublic bool

	devPrefix    byte
	adminPrefix  byte
	publicPrefix byte

	// Admin-prefixed commands that stay public for backward compatibility.
	publicAdminCommands map[string]struct{}

	ttl   time.Duration
	mu    sync.Mutex
	cache map[int64]cacheEntry

	log zerolog.Logger
}

// NewResolver builds a Resolver from configuration.
func NewResolver(cfg *config.Config, log zerolog.Logger) *Resolver {
	developers := make(map[int64]struct{}, len(cfg.DeveloperIDs))
	for _, id := range cfg.DeveloperIDs {
		developers[id] = struct{}{}
	}
	adminChats := make(map[int64]struct{}, len(cfg.AdminChatIDs))
	for _, id := range cfg.AdminChatIDs {
		adminChats[id] = struct{}{}
	}
	return &Resolver{
		ownerID:      cfg.OwnerID,
		developers:   developers,
		adminChats:   adminChats,
		enablePublic: cfg.EnablePublicCommands,
		devPrefix:    cfg.DeveloperPrefix[0],
		adminPrefix:  cfg.AdminPrefix[0],
		publicPrefix: cfg.PublicPrefix[0],
		publicAdminCommands: map[string]struct{}{
			"/play": {}, "/p": {}, "/music": {}, "/pause": {}, "/resume": {},
			"/stop": {}, "/end": {}, "/queue": {}, "/q": {}, "/ping": {},
		},
		ttl:   cfg.AdminCacheTTL,
		cache: map[int64]cacheEntry{},
		log:   log.With().Str("component", "auth").Logger(),
	}
}

// IsOwner reports whether userID is the configured owner.
func (r *Resolver) IsOwner(userID int64) bool {
	return r.ownerID != 0 && userID == r.ownerID
}

// IsDeveloper reports whether userID is in the configured developer set.
func (r *Resolver) IsDeveloper(userID int64) bool {
	_, ok := r.developers[userID]
	return ok
}

// IsDeveloperOrOwner reports whether userID holds a global privilege.
func (r *Resolver) IsDeveloperOrOwner(userID int64) bool {
	return r.IsOwner(userID) || r.IsDeveloper(userID)
}

// IsChatAdmin reports whether userID administers chatID. Membership is
// served from the cache while the entry is within TTL; otherwise one fetch
// through the transport rebuilds it. A failed fetch is logged and leaves
// an empty member set, so nobody gains admin rights during an outage.
func (r *Resolver) IsChatAdmin(ctx context.Context, fetcher AdminFetcher, userID, chatID int64) bool {
	if _, ok := r.adminChats[chatID]; ok {
		return true
	}

	r.mu.Lock()
	entry, ok := r.cache[chatID]
	r.mu.Unlock()

	if !ok || time.Since(entry.fetchedAt) > r.ttl {
		entry = r.refresh(ctx, fetcher, chatID)
	}

	_, admin := entry.members[userID]
	return admin
}

func (r *Resolver) refresh(ctx context.Context, fetcher AdminFetcher, chatID int64) cacheEntry {
	members := map[int64]struct{}{}
	ids, err := fetcher.GetChatAdministrators(ctx, chatID)
	if err != nil {
		r.log.Warn().Err(err).Int64("chat_id", chatID).Msg("admin list fetch failed, assuming none")
	} else {
		for _, id := range ids {
			members[id] = struct{}{}
		}
	}

	entry := cacheEntry{members: members, fetchedAt: time.Now()}
	r.mu.Lock()
	r.cache[chatID] = entry
	r.mu.Unlock()
	return entry
}

// ClassifyPrefix maps the leading character of text to the tier its
// command would require. Priority is fixed: developer, then admin, then
// public, so ambiguous configurations still resolve deterministically.
func (r *Resolver) ClassifyPrefix(text string) Tier {
	if text == "" {
		return TierNone
	}
	switch text[0] {
	case r.devPrefix:
		return TierDeveloper
	case r.adminPrefix:
		return TierAdmin
	case r.publicPrefix:
		return TierPublic
	default:
		return TierNone
	}
}

// Authorize decides whether userID may run the command in text within
// chatID. It never fails open.
func (r *Resolver) Authorize(ctx context.Context, fetcher AdminFetcher, userID, chatID int64, text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	token := strings.ToLower(fields[0])
	if at := strings.IndexByte(token, '@'); at >= 0 {
		token = token[:at]
	}
	if _, ok := r.publicAdminCommands[token]; ok {
		return true
	}

	switch r.ClassifyPrefix(text) {
	case TierDeveloper:
		return r.IsDeveloperOrOwner(userID)
	case TierAdmin:
		if r.IsDeveloperOrOwner(userID) {
			return true
		}
		return r.IsChatAdmin(ctx, fetcher, userID, chatID)
	case TierPublic:
		return r.enablePublic
	default:
		return false
	}
}

// Resolve reports the highest role userID holds in chatID.
func (r *Resolver) Resolve(ctx context.Context, fetcher AdminFetcher, userID, chatID int64) Role {
	switch {
	case r.IsOwner(userID):
		return RoleOwner
	case r.IsDeveloper(userID):
		return RoleDeveloper
	case r.IsChatAdmin(ctx, fetcher, userID, chatID):
		return RoleChatAdmin
	default:
		return RolePublic
	}
}

// Invalidate drops the cached admin set of one chat so the next check
// refetches regardless of TTL. Called after the bot itself promotes or
// demotes someone.
func (r *Resolver) Invalidate(chatID int64) {
	r.mu.Lock()
	delete(r.cache, chatID)
	r.mu.Unlock()
}

// InvalidateAll clears the whole admin cache.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = map[int64]cacheEntry{}
	r.mu.Unlock()
}

// DenialMessage returns the user-facing text for a denied tier.
func (r *Resolver) DenialMessage(tier Tier) string {
	switch tier {
	case TierDeveloper:
		return "Access denied. Developer-level authorization required."
	case TierAdmin:
		return "Access denied. Admin authorization required."
	case TierPublic:
		return "Access denied. Public commands are disabled."
	default:
		return "Access denied."
	}
}
