package cache

import (
	"context"
	"dispatch-planner-service/internal/platform/obs"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const tripKeyPrefix = "dispatch:trip:"

// RedisTripCache stores raw optimizer responses keyed by a hash of the
// token-free query. Entries expire after TTL.
type RedisTripCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTripCache(client *redis.Client, ttl time.Duration) *RedisTripCache {
	return &RedisTripCache{Client: client, TTL: ttl}
}

func tripKey(query string) string {
	return tripKeyPrefix + strconv.FormatUint(xxhash.Sum64String(query), 16)
}

// Fetch the cached response body for query.
func (c *RedisTripCache) Get(ctx context.Context, query string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "trip.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("trip cache: client is nil")
	}
	if strings.TrimSpace(query) == "" {
		return nil, false, errors.New("get trip cache: query must not be empty")
	}

	b, err := c.Client.Get(ctx, tripKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get trip cache: %w", err)
	}

	return b, true, nil
}

// Store the response body for query.
func (c *RedisTripCache) Put(ctx context.Context, query string, body []byte) error {
	if c.Client == nil {
		return errors.New("trip cache: client is nil")
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("insert trip cache: query must not be empty")
	}
	if len(body) == 0 {
		return nil
	}

	if err := c.Client.Set(ctx, tripKey(query), body, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert trip cache: %w", err)
	}
	return nil
}
