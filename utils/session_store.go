package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// RevocationStore remembers logged-out session IDs until they would have expired anyway.
// Redis is used when available, otherwise an in-process map.
type RevocationStore struct {
	rc *redis.Client

	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewRevocationStore creates a store backed by rc, or by memory when rc is nil.
func NewRevocationStore(rc *redis.Client) *RevocationStore {
	return &RevocationStore{rc: rc, revoked: map[string]time.Time{}}
}

// Revoke marks the session ID as logged out until expiresAt.
func (s *RevocationStore) Revoke(ctx context.Context, id string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if id == "" || ttl <= 0 {
		return
	}
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := s.rc.Set(ctx, revokedKeyPrefix+id, "1", ttl).Err()
		if err == nil {
			return
		}
		Sugar.Warnw("session revoke via redis failed, keeping it in memory", "err", err)
	}
	s.mu.Lock()
	s.revoked[id] = expiresAt
	s.mu.Unlock()
}

// IsRevoked reports whether the session ID was logged out.
func (s *RevocationStore) IsRevoked(ctx context.Context, id string) bool {
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := s.rc.Exists(ctx, revokedKeyPrefix+id).Result()
		if err == nil && n > 0 {
			return true
		}
		// on redis error fall through to memory: entries land there when redis was down at revoke time
	}

	s.mu.RLock()
	expiresAt, ok := s.revoked[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		s.mu.Lock()
		delete(s.revoked, id)
		s.mu.Unlock()
		return false
	}
	return true
}
