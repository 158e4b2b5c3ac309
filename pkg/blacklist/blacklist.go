// Package blacklist records revoked session tokens until they would have expired.
package blacklist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store revokes single tokens by id and every token of a user issued before a point in time.
type Store interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

func tokenKey(id string) string { return "blacklist:token:" + id }
func userKey(id string) string  { return "blacklist:user:" + id }

// RedisBlacklist keeps revocations in Redis so every instance sees them.
type RedisBlacklist struct {
	redis *redis.Client
	now   func() time.Time
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{redis: client, now: time.Now}
}

// Revoke keeps the marker for the token's remaining lifetime.
func (b *RedisBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.redis.Set(ctx, tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := b.redis.Exists(ctx, tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// RevokeUser invalidates every token issued before now. ttl should outlive the token lifetime.
func (b *RedisBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := b.redis.Set(ctx, userKey(userID), b.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist user: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	ts, err := b.redis.Get(ctx, userKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user blacklist: %w", err)
	}
	return issuedAt.Before(time.Unix(ts, 0)), nil
}

type entry struct {
	value   time.Time
	expires time.Time
}

// MemoryBlacklist is the single-instance fallback used when Redis is disabled.
type MemoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]entry
	users  map[string]entry
	now    func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens: make(map[string]entry),
		users:  make(map[string]entry),
		now:    time.Now,
	}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !expiresAt.After(b.now()) {
		return nil
	}
	b.tokens[tokenID] = entry{expires: expiresAt}
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.tokens[tokenID]
	if !ok {
		return false, nil
	}
	if !e.expires.After(b.now()) {
		delete(b.tokens, tokenID)
		return false, nil
	}
	return true, nil
}

func (b *MemoryBlacklist) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.users[userID] = entry{value: now.Truncate(time.Second), expires: now.Add(ttl)}
	return nil
}

func (b *MemoryBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.users[userID]
	if !ok {
		return false, nil
	}
	if !e.expires.After(b.now()) {
		delete(b.users, userID)
		return false, nil
	}
	return issuedAt.Before(e.value), nil
}
