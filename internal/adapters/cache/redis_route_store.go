package cache

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

const routeKey = "dispatch:route:current"

// RedisRouteStore keeps the displayed route as a GeoJSON document in Redis,
// so it survives restarts and is shared between server instances.
type RedisRouteStore struct {
	Client *redis.Client
}

func NewRedisRouteStore(client *redis.Client) *RedisRouteStore {
	return &RedisRouteStore{Client: client}
}

func (s *RedisRouteStore) Replace(ctx context.Context, route *geojson.FeatureCollection) (err error) {
	defer obs.Time(ctx, "route.store.Replace")(&err)

	if s.Client == nil {
		return errors.New("route store: client is nil")
	}
	if route == nil {
		route = domain.EmptyRoute()
	}

	b, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("replace route: marshal: %w", err)
	}

	if err := s.Client.Set(ctx, routeKey, b, 0).Err(); err != nil {
		return fmt.Errorf("replace route: %w", err)
	}
	return nil
}

func (s *RedisRouteStore) Current(ctx context.Context) (*geojson.FeatureCollection, error) {
	if s.Client == nil {
		return nil, errors.New("route store: client is nil")
	}

	b, err := s.Client.Get(ctx, routeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.EmptyRoute(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("current route: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("current route: decode: %w", err)
	}
	return fc, nil
}
