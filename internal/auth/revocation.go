package auth

import (
	"context"
	"time"

	"authportal/internal/cache"
)

const revokedSessionKeyPrefix = "revoked_session:"

// RevocationStore remembers logged-out session ids until their natural
// expiry. It is optional: the session cookie alone is authoritative when no
// store is configured.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) bool
}

// CacheRevocationStore keeps revoked session ids in redis.
type CacheRevocationStore struct {
	cache *cache.Client
}

var _ RevocationStore = (*CacheRevocationStore)(nil)

// NewCacheRevocationStore creates a store backed by the fail-safe cache.
func NewCacheRevocationStore(c *cache.Client) *CacheRevocationStore {
	return &CacheRevocationStore{cache: c}
}

// Revoke marks sessionID as logged out for ttl.
func (s *CacheRevocationStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return nil
	}
	return s.cache.Set(ctx, revokedSessionKeyPrefix+sessionID, []byte("1"), ttl)
}

// IsRevoked reports whether sessionID was logged out. Cache errors read as
// not revoked.
func (s *CacheRevocationStore) IsRevoked(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	data, _ := s.cache.Get(ctx, revokedSessionKeyPrefix+sessionID)
	return data != nil
}
