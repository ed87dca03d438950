package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redislock "github.com/tendant/portfolio-content/pkg/portfolio/lock/redis"
)

func newLocker(t *testing.T, opts ...redislock.Option) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	opts = append([]redislock.Option{redislock.WithRetryInterval(time.Millisecond)}, opts...)
	return redislock.New(client, opts...), mr
}

func TestLockAndRelease(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "project:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("portfolio:lock:project:1"))

	unlock()
	assert.False(t, mr.Exists("portfolio:lock:project:1"))

	// a second call is a no-op
	unlock()
}

func TestLockBlocksUntilReleased(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "project:1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "project:1")
		if err == nil {
			second()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first was held")
	case <-time.After(30 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestLockHonoursContext(t *testing.T) {
	locker, _ := newLocker(t)

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExpiredLeaseIsNotReleasedByOldHolder(t *testing.T) {
	locker, mr := newLocker(t, redislock.WithTTL(time.Second))
	ctx := context.Background()

	stale, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists("portfolio:lock:k"), "stale release must not drop the new holder's lock")
	fresh()
	assert.False(t, mr.Exists("portfolio:lock:k"))
}

func TestDistinctKeysDoNotContend(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, key)
			if assert.NoError(t, err) {
				unlock()
			}
		}(key)
	}
	wg.Wait()
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redislock.Dial(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = redislock.Dial(context.Background(), "not a url")
	assert.Error(t, err)
}
