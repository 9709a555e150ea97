package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	entryPrefix = "susdigest:entry:"
	hashPrefix  = "susdigest:hash:"
	subjectsKey = "susdigest:subjects"
)

// RedisStore keeps entries as JSON strings with an optional TTL. A set of
// subject keys backs List; a hash index backs FindByHash.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisStore wraps client. A zero ttl keeps entries forever.
func NewRedisStore(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, log: log}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration, log *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, ttl, log), nil
}

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	k := key(e.Subject)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, entryPrefix+k, data, s.ttl)
	pipe.SAdd(ctx, subjectsKey, k)
	if e.ContentHash != "" {
		pipe.Set(ctx, hashPrefix+e.ContentHash, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, subject string) (Entry, error) {
	data, err := s.client.Get(ctx, entryPrefix+key(subject)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return e, nil
}

func (s *RedisStore) FindByHash(ctx context.Context, hash string) (Entry, error) {
	k, err := s.client.Get(ctx, hashPrefix+hash).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get hash index: %w", err)
	}
	e, err := s.Get(ctx, k)
	if err != nil {
		return Entry{}, err
	}
	// The subject may have been overwritten by another document since.
	if e.ContentHash != hash {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	keys, err := s.client.SMembers(ctx, subjectsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]Entry, 0, len(keys))
	var expired []any
	for _, k := range keys {
		e, err := s.Get(ctx, k)
		if errors.Is(err, ErrNotFound) {
			expired = append(expired, k)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if len(expired) > 0 {
		if err := s.client.SRem(ctx, subjectsKey, expired...).Err(); err != nil {
			s.log.Debug("prune expired subjects failed", "count", len(expired), "error", err)
		} else {
			s.log.Debug("pruned expired subjects", "count", len(expired))
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, subject string) error {
	e, err := s.Get(ctx, subject)
	if err != nil {
		return err
	}
	k := key(subject)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, entryPrefix+k)
	pipe.SRem(ctx, subjectsKey, k)
	if e.ContentHash != "" {
		pipe.Del(ctx, hashPrefix+e.ContentHash)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
