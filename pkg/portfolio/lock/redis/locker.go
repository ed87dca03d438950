// Package redis provides a portfolio.Locker shared by every server instance
// that points at the same Redis.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 25 * time.Millisecond
	keyPrefix    = "portfolio:lock:"
)

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lease-based lock on Redis. A holder that outlives the TTL
// loses the lock.
type Locker struct {
	client goredis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	logger *slog.Logger
}

// Option configures a Locker.
type Option func(*Locker)

// WithTTL sets the lease duration.
func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetryInterval sets how often a waiting caller polls.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// WithLogger sets the logger used for release failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locker) { l.logger = logger }
}

// New returns a Locker on client.
func New(client goredis.UniversalClient, opts ...Option) *Locker {
	l := &Locker{client: client, ttl: defaultTTL, retry: defaultRetry, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ portfolio.Locker = (*Locker)(nil)

// Dial parses a redis:// URL and verifies the server answers.
func Dial(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Lock polls until the key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlocker(redisKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlocker(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled; release regardless.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("Failed to release lock", "key", redisKey, "error", err)
			}
		})
	}
}
