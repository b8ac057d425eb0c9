package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/dailyquest/internal/progression"
)

// DefaultRedisPrefix namespaces progression keys.
const DefaultRedisPrefix = "dailyquest:progression:"

// Redis is a Remote backed by Redis. Conditional writes use WATCH/MULTI so a
// concurrent writer aborts the transaction instead of being overwritten.
type Redis struct {
	client *redis.Client
	prefix string
}

var (
	_ Remote = (*Redis)(nil)
	_ Lister = (*Redis)(nil)
)

// NewRedisClient builds a go-redis client.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedis wraps client. An empty prefix uses DefaultRedisPrefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(userID string) string {
	return r.prefix + userID
}

func (r *Redis) Get(ctx context.Context, userID string) (*progression.Record, error) {
	b, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeRecord(b)
}

func (r *Redis) Update(ctx context.Context, userID string, expectedVersion int64, rec *progression.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	key := r.key(userID)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}
		cur, err := decodeRecord(b)
		if err != nil {
			return err
		}
		if cur.Version != expectedVersion {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("redis update: %w", err)
	}
}

func (r *Redis) Create(ctx context.Context, rec *progression.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.key(rec.UserID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

// ListUserIDs scans the key space under the prefix.
func (r *Redis) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Now returns the Redis server clock.
func (r *Redis) Now(ctx context.Context) (time.Time, error) {
	t, err := r.client.Time(ctx).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("redis time: %w", err)
	}
	return t.UTC(), nil
}
