package redislivestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	guardKeyPrefix = "unibtc:guard:"
	quotaKeyPrefix = "unibtc:quota:"

	guardTTL      = 30 * time.Second
	guardPollTime = 50 * time.Millisecond
)

// releaseScript deletes the guard key only when still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type liveStore struct {
	claimGuards ports.ClaimGuardStore
	quotaCache  ports.QuotaCacheStore
}

func NewLiveStore(client *redis.Client) ports.LiveStore {
	return &liveStore{
		claimGuards: &claimGuardStore{client},
		quotaCache:  &quotaCacheStore{client},
	}
}

func (s *liveStore) ClaimGuards() ports.ClaimGuardStore {
	return s.claimGuards
}

func (s *liveStore) QuotaCache() ports.QuotaCacheStore {
	return s.quotaCache
}

type claimGuardStore struct {
	client *redis.Client
}

func (s *claimGuardStore) Acquire(
	ctx context.Context, recipient string,
) (func(), error) {
	key := guardKeyPrefix + recipient
	owner := uuid.NewString()

	for {
		ok, err := s.client.SetNX(ctx, key, owner, guardTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire claim guard: %w", err)
		}
		if ok {
			return func() {
				// nolint:all
				releaseScript.Run(context.Background(), s.client, []string{key}, owner)
			}, nil
		}

		select {
		case <-time.After(guardPollTime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type quotaCacheStore struct {
	client *redis.Client
}

func (s *quotaCacheStore) Get(ctx context.Context, token string) (uint64, bool) {
	val, err := s.client.Get(ctx, quotaKeyPrefix+token).Result()
	if err != nil {
		return 0, false
	}
	available, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return available, true
}

func (s *quotaCacheStore) Set(ctx context.Context, token string, available uint64) error {
	return s.client.Set(
		ctx, quotaKeyPrefix+token, strconv.FormatUint(available, 10), 0,
	).Err()
}

func (s *quotaCacheStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, quotaKeyPrefix+token).Err()
}
