// AngelaMos | 2026
// store_test.go

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/core"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, "asha", RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "asha", got.Username)
	assert.Equal(t, RoleUser, got.Role)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, created.ExpiresAt, got.ExpiresAt, 2*time.Second)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, "asha", RoleUser)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "asha", RoleUser)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	members, err := mr.SMembers(userSessionsKey(RoleUser, "asha"))
	if err == nil {
		assert.NotContains(t, members, sess.ID)
	}
}

func TestRedisStore_DeleteUnknownIsNoop(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	assert.NoError(t, store.Delete(context.Background(), "missing"))
}

func TestRedisStore_DeleteForUser_RespectsNamespaces(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	first, err := store.Create(ctx, "ravi", RoleUser)
	require.NoError(t, err)
	second, err := store.Create(ctx, "ravi", RoleUser)
	require.NoError(t, err)
	admin, err := store.Create(ctx, "ravi", RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, store.DeleteForUser(ctx, RoleUser, "ravi"))

	_, err = store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = store.Get(ctx, second.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := store.Get(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got.Role)
}
