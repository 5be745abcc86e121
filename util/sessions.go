package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps the mapping from session id to user id.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, sid string) (string, error)
	Delete(ctx context.Context, sid string) error
	InvalidateUser(ctx context.Context, userID string) error
}

// NewSessionStore returns a Redis backed store, or an in-process one when
// rdb is nil.
func NewSessionStore(rdb *redis.Client) SessionStore {
	if rdb == nil {
		return NewMemorySessionStore()
	}
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(sid string) string { return fmt.Sprintf("session:%s", sid) }
func userSetKey(userID string) string { return fmt.Sprintf("user_sessions:%s", userID) }

// RedisSessionStore stores sessions as session:<sid> keys with a TTL and
// tracks them per user in user_sessions:<uid>.
type RedisSessionStore struct {
	rdb *redis.Client
}

// removeFromUserSet atomically removes the sid and deletes the set if empty.
const removeFromUserSetScript = `
	local removed = redis.call('SREM', KEYS[1], ARGV[1])
	if removed > 0 then
		local count = redis.call('SCARD', KEYS[1])
		if count == 0 then
			redis.call('DEL', KEYS[1])
		end
	end
	return removed
`

func (s *RedisSessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(sid), userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := s.rdb.SAdd(ctx, userSetKey(userID), sid).Err(); err != nil {
		return "", fmt.Errorf("index session: %w", err)
	}
	return sid, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sid string) (string, error) {
	userID, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sid string) error {
	userID, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return err
	}
	return s.rdb.Eval(ctx, removeFromUserSetScript, []string{userSetKey(userID)}, sid).Err()
}

func (s *RedisSessionStore) InvalidateUser(ctx context.Context, userID string) error {
	members, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	for _, sid := range members {
		_ = s.rdb.Del(ctx, sessionKey(sid)).Err()
	}
	return s.rdb.Del(ctx, userSetKey(userID)).Err()
}

// MemorySessionStore keeps sessions in process memory. Sessions do not
// survive a restart.
type MemorySessionStore struct {
	sessions *cache.Cache
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: cache.New(24*time.Hour, 10*time.Minute)}
}

func (s *MemorySessionStore) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	s.sessions.Set(sid, userID, ttl)
	return sid, nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, sid string) (string, error) {
	v, ok := s.sessions.Get(sid)
	if !ok {
		return "", ErrSessionNotFound
	}
	return v.(string), nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sid string) error {
	s.sessions.Delete(sid)
	return nil
}

func (s *MemorySessionStore) InvalidateUser(_ context.Context, userID string) error {
	for sid, item := range s.sessions.Items() {
		if item.Object == userID {
			s.sessions.Delete(sid)
		}
	}
	return nil
}
