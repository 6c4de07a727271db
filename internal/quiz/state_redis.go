package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultSessionTTL = 2 * time.Hour
	sessionLockTTL    = 10 * time.Second
	lockRetryMin      = 5 * time.Millisecond
	lockRetryMax      = 100 * time.Millisecond
)

// redisKV is the part of the go-redis client the state store uses.
// *redis.Client satisfies it.
type redisKV interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// unlockScript deletes the lock only if we still own it.
const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// RedisStateStore keeps session state in Redis with an idle TTL so several
// API replicas can serve the same session. Keys expire; nothing is archived.
type RedisStateStore struct {
	redis  redisKV
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStateStore creates a state store backed by Redis.
func NewRedisStateStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStateStore {
	return newRedisStateStore(client, ttl, logger)
}

func newRedisStateStore(client redisKV, ttl time.Duration, logger zerolog.Logger) *RedisStateStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStateStore{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_state_redis").Logger(),
	}
}

func sessionKey(id string) string     { return fmt.Sprintf("quiz:session:%s", id) }
func sessionLockKey(id string) string { return fmt.Sprintf("quiz:session:lock:%s", id) }

// Lock acquires a short-lived lock for one state transition. A held lock is
// retried with backoff until ctx is done.
func (r *RedisStateStore) Lock(ctx context.Context, id string) (func() error, error) {
	key := sessionLockKey(id)
	lockValue := uuid.New().String()

	wait := lockRetryMin
	for {
		acquired, err := r.redis.SetNX(ctx, key, lockValue, sessionLockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrSessionBusy, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if acquired {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrSessionBusy, ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, lockRetryMax)
	}

	unlock := func() error {
		return r.redis.Eval(context.Background(), unlockScript, []string{key}, lockValue).Err()
	}
	return unlock, nil
}

// Get retrieves a session.
func (r *RedisStateStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Warn().Err(err).Str("session_id", id).Msg("corrupted session state")
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Put saves a session and refreshes its TTL.
func (r *RedisStateStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.redis.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

// Delete removes a session.
func (r *RedisStateStore) Delete(ctx context.Context, id string) error {
	return r.redis.Del(ctx, sessionKey(id)).Err()
}
