package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"rtrove/internal/observability"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.StorageErrors.WithLabelValues("redis", cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.StorageErrors.WithLabelValues("redis", "pipeline").Inc()
		}
		return err
	}
}

// Redis is a KV stored in a redis database.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	client.AddHook(metricsHook{})
	return &Redis{client: client}
}

// OpenRedis connects to addr, which is either a redis:// URL or host:port.
func OpenRedis(ctx context.Context, addr string) (*Redis, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	// Servers without the maint_notifications subcommand reject the handshake.
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	r := NewRedis(redis.NewClient(opts))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.client.Ping(pingCtx).Err(); err != nil {
		_ = r.client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	observability.GlobalLogger.Info("Redis connected successfully")
	return r, nil
}

func (r *Redis) Backend() string { return "redis" }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	batch := NewBatch()
	batch.PutRaw(key, value)
	return r.Apply(ctx, batch)
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	batch := NewBatch()
	batch.Delete(key)
	return r.Apply(ctx, batch)
}

// Apply sends the batch as one MULTI/EXEC transaction.
func (r *Redis) Apply(ctx context.Context, batch *Batch) error {
	return commit(ctx, r.Backend(), batch, func(ctx context.Context) error {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, op := range batch.Ops() {
				if op.Delete {
					pipe.Del(ctx, op.Key)
				} else {
					pipe.Set(ctx, op.Key, op.Value, 0)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("redis exec: %w", err)
		}
		return nil
	})
}

func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	return keys, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
