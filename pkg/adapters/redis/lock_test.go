package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tgquest/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocker_AcquireRelease(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "42", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("tgquest:lock:42"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("tgquest:lock:42"))
}

func TestLocker_HeldLockTimesOut(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, redis.WithMaxWait(200*time.Millisecond))
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "42", time.Minute)
	require.NoError(t, err)
	defer unlock(ctx)

	_, err = locker.Lock(ctx, "42", time.Minute)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
}

func TestLocker_WaitsForRelease(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, redis.WithPrefix("test:"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	unlock, err := locker.Lock(ctx, "u", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = unlock(context.Background())
	}()

	unlock2, err := locker.Lock(ctx, "u", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockKeepsForeignToken(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "42", time.Minute)
	require.NoError(t, err)

	// Lock expired and was taken by someone else.
	require.NoError(t, mr.Set("tgquest:lock:42", "other"))
	require.NoError(t, unlock(ctx))

	got, err := mr.Get("tgquest:lock:42")
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}

func TestLocker_ContextCancelled(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client)

	unlock, err := locker.Lock(context.Background(), "42", time.Minute)
	require.NoError(t, err)
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "42", time.Minute)
	assert.Error(t, err)
}
