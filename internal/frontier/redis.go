package frontier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// store is the narrow port onto the shared-set server. Tests fake it;
// production uses redisStore.
type store interface {
	Ping(ctx context.Context) error
	SPop(ctx context.Context, key string) (string, bool, error)
	SAdd(ctx context.Context, key string, member string) error
	SIsMember(ctx context.Context, key string, member string) (bool, error)
	SCard(ctx context.Context, key string) (int64, error)
	FlushDB(ctx context.Context) error
	Close() error
}

type redisStore struct {
	client *redis.Client
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) SPop(ctx context.Context, key string) (string, bool, error) {
	member, err := s.client.SPop(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return member, true, nil
}

func (s *redisStore) SAdd(ctx context.Context, key string, member string) error {
	return s.client.SAdd(ctx, key, member).Err()
}

func (s *redisStore) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	return s.client.SIsMember(ctx, key, member).Result()
}

func (s *redisStore) SCard(ctx context.Context, key string) (int64, error) {
	return s.client.SCard(ctx, key).Result()
}

func (s *redisStore) FlushDB(ctx context.Context) error {
	return s.client.FlushDB(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

// RedisFrontier backs the frontier with two named sets on a shared
// Redis server so that multiple crawler processes can partition one
// crawl.
//
// AcquireNext relies on SPOP being atomic: a URL is handed to exactly
// one worker across all attached processes. AddCandidate's
// membership-test-then-add is deliberately non-atomic; a URL that
// slips back into the pending set right after being visited is handed
// out again on its next pop, so it can be fetched a second time.
type RedisFrontier struct {
	store      store
	toVisitKey string
	visitedKey string
	pred       QuiescencePredicate
	poll       time.Duration
}

func NewRedisFrontier(host string, port int, toVisitKey, visitedKey string) *RedisFrontier {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})
	return &RedisFrontier{
		store:      &redisStore{client: client},
		toVisitKey: toVisitKey,
		visitedKey: visitedKey,
		poll:       quiescencePollInterval,
	}
}

func (f *RedisFrontier) SetQuiescencePredicate(pred QuiescencePredicate) {
	f.pred = pred
}

func (f *RedisFrontier) Init(ctx context.Context) error {
	if err := f.store.Ping(ctx); err != nil {
		return &FrontierError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnavailable,
		}
	}
	return nil
}

func (f *RedisFrontier) AddCandidate(ctx context.Context, rawURL string) error {
	visited, err := f.store.SIsMember(ctx, f.visitedKey, rawURL)
	if err != nil {
		return f.unavailable(err)
	}
	if visited {
		return nil
	}
	if err := f.store.SAdd(ctx, f.toVisitKey, rawURL); err != nil {
		return f.unavailable(err)
	}
	return nil
}

func (f *RedisFrontier) AcquireNext(ctx context.Context) (string, error) {
	for {
		url, ok, err := f.store.SPop(ctx, f.toVisitKey)
		if err != nil {
			return "", f.unavailable(err)
		}
		if ok {
			if err := f.store.SAdd(ctx, f.visitedKey, url); err != nil {
				return "", f.unavailable(err)
			}
			return url, nil
		}

		if f.pred != nil && f.pred() {
			return "", nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.poll):
		}
	}
}

func (f *RedisFrontier) MarkVisited(ctx context.Context, rawURL string) error {
	if err := f.store.SAdd(ctx, f.visitedKey, rawURL); err != nil {
		return f.unavailable(err)
	}
	return nil
}

func (f *RedisFrontier) PendingCount(ctx context.Context) (int64, error) {
	count, err := f.store.SCard(ctx, f.toVisitKey)
	if err != nil {
		return 0, f.unavailable(err)
	}
	return count, nil
}

// Clear flushes the backing store. Used by the CLI's --clear flag
// before starting a fresh crawl.
func (f *RedisFrontier) Clear(ctx context.Context) error {
	if err := f.store.FlushDB(ctx); err != nil {
		return f.unavailable(err)
	}
	return nil
}

func (f *RedisFrontier) Close() error {
	return f.store.Close()
}

func (f *RedisFrontier) unavailable(err error) error {
	return &FrontierError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseUnavailable,
	}
}
