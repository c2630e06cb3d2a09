package realtime

import (
	"sync"
	"time"

	"beacon_chat_server/internal/model"
	"beacon_chat_server/internal/service/membership"
)

// verdict is one cached authorization decision.
type verdict struct {
	isMember bool
	chat     *model.Chat
	expires  time.Time
}

// CachedVerifier fronts the membership service with a TTL cache so
// room-scoped socket events do not pay a store round-trip each time.
// The cache is never the source of truth: entries expire after ttl and
// the next check falls through to the durable roster, which bounds the
// staleness window of kicks, leaves and invite joins.
type CachedVerifier struct {
	inner *membership.Service
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]verdict
}

// NewCachedVerifier wraps inner with a ttl-bounded cache.
func NewCachedVerifier(inner *membership.Service, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]verdict),
	}
}

// VerifyMembership resolves through the cache, falling back to the
// durable check on miss or expiry. Errors are never cached.
func (v *CachedVerifier) VerifyMembership(chatUuid, userUuid string) (bool, *model.Chat, error) {
	key := userUuid + "|" + chatUuid
	now := time.Now()

	v.mu.Lock()
	if entry, ok := v.entries[key]; ok {
		if now.Before(entry.expires) {
			v.mu.Unlock()
			return entry.isMember, entry.chat, nil
		}
		delete(v.entries, key)
	}
	v.mu.Unlock()

	isMember, chat, err := v.inner.VerifyMembership(chatUuid, userUuid)
	if err != nil {
		return false, nil, err
	}

	v.mu.Lock()
	v.entries[key] = verdict{isMember: isMember, chat: chat, expires: now.Add(v.ttl)}
	v.mu.Unlock()

	return isMember, chat, nil
}

// Invalidate drops the cached verdict for one (user, chat) pair.
func (v *CachedVerifier) Invalidate(chatUuid, userUuid string) {
	v.mu.Lock()
	delete(v.entries, userUuid+"|"+chatUuid)
	v.mu.Unlock()
}
