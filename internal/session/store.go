// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/leafcare/internal/core"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session is the server-side state behind one login: who is signed in and
// in which namespace. It replaces the per-page key/value state of the
// interactive UI.
type Session struct {
	ID        string
	Username  string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Store interface {
	Create(ctx context.Context, username, role string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, role, username string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) Create(
	ctx context.Context,
	username, role string,
) (*Session, error) {
	id, err := core.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        id,
		Username:  username,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	userKey := userSessionsKey(role, username)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, sessionKey(id), map[string]any{
			"username":   username,
			"role":       role,
			"created_at": now.Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, sessionKey(id), s.ttl)
		pipe.SAdd(ctx, userKey, id)
		pipe.Expire(ctx, userKey, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	key := sessionKey(id)

	pipe := s.client.Pipeline()
	fieldsCmd := pipe.HGetAll(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	fields := fieldsCmd.Val()
	if len(fields) == 0 {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("get session: parse created_at: %w", err)
	}

	sess := &Session{
		ID:        id,
		Username:  fields["username"],
		Role:      fields["role"],
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(s.ttl),
	}

	if ttl := ttlCmd.Val(); ttl > 0 {
		sess.ExpiresAt = s.now().UTC().Add(ttl)
	}

	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	key := sessionKey(id)

	fields, err := s.client.HMGet(ctx, key, "username", "role").Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	username, _ := fields[0].(string)
	role, _ := fields[1].(string)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if username != "" {
			pipe.SRem(ctx, userSessionsKey(role, username), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// DeleteForUser ends every live session of one account, used when an
// admin removes a user.
func (s *RedisStore) DeleteForUser(
	ctx context.Context,
	role, username string,
) error {
	userKey := userSessionsKey(role, username)

	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(role, username string) string {
	return "sessions:" + role + ":" + username
}

var _ Store = (*RedisStore)(nil)
