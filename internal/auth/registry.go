package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry remembers which sessions are live so that sign-out revokes a
// token before it expires.
type Registry interface {
	Register(ctx context.Context, c *Claims, token string) error
	Active(ctx context.Context, c *Claims, token string) (bool, error)
	Revoke(ctx context.Context, c *Claims, token string) error
}

const sessionNamespace = "session_tokens"

// sessionKey is "<uid>:<jti>", falling back to a token digest when the
// provider does not set a token id.
func sessionKey(c *Claims, token string) string {
	id := c.ID
	if id == "" {
		sum := sha256.Sum256([]byte(token))
		id = hex.EncodeToString(sum[:16])
	}
	return c.Subject + ":" + id
}

func ttl(c *Claims, now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

type RedisRegistry struct {
	client redis.UniversalClient
}

func NewRedisRegistry(client redis.UniversalClient) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) key(c *Claims, token string) string {
	return sessionNamespace + ":" + sessionKey(c, token)
}

func (r *RedisRegistry) Register(ctx context.Context, c *Claims, token string) error {
	d := ttl(c, time.Now())
	if d <= 0 {
		return ErrInvalidToken
	}
	return r.client.Set(ctx, r.key(c, token), token, d).Err()
}

func (r *RedisRegistry) Active(ctx context.Context, c *Claims, token string) (bool, error) {
	got, err := r.client.Get(ctx, r.key(c, token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got == token, nil
}

func (r *RedisRegistry) Revoke(ctx context.Context, c *Claims, token string) error {
	return r.client.Del(ctx, r.key(c, token)).Err()
}

// MemoryRegistry is the single-instance registry.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: map[string]time.Time{}, now: time.Now}
}

func (r *MemoryRegistry) Register(_ context.Context, c *Claims, token string) error {
	now := r.now()
	d := ttl(c, now)
	if d <= 0 {
		return ErrInvalidToken
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, exp := range r.sessions {
		if !exp.After(now) {
			delete(r.sessions, k)
		}
	}
	r.sessions[sessionKey(c, token)] = now.Add(d)
	return nil
}

func (r *MemoryRegistry) Active(_ context.Context, c *Claims, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.sessions[sessionKey(c, token)]
	return ok && exp.After(r.now()), nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, c *Claims, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey(c, token))
	return nil
}
