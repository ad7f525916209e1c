package auth

import (
	"sync"
	"time"
)

// Blacklist is the process-wide revocation registry: a concurrency-safe set
// of revoked token strings, injected into the auth service rather than held
// as a package global. Every entry carries a drop-dead time of revoke-time
// plus the token TTL, after which the token has expired on its own and the
// entry is prunable. Entries are swept lazily on writes, so memory is bounded
// by the revocations of one token-lifetime window.
type Blacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewBlacklist(tokenTTL time.Duration) *Blacklist {
	return &Blacklist{
		entries: make(map[string]time.Time),
		ttl:     tokenTTL,
		now:     time.Now,
	}
}

// Revoke is idempotent: revoking the same token twice keeps one entry.
func (b *Blacklist) Revoke(token string) {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, deadline := range b.entries {
		if now.After(deadline) {
			delete(b.entries, t)
		}
	}
	b.entries[token] = now.Add(b.ttl)
}

func (b *Blacklist) IsRevoked(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[token]
	return ok
}

func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
