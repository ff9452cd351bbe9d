package cache

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// MemoryRouteStore keeps the displayed route in process memory.
type MemoryRouteStore struct {
	mu    sync.RWMutex
	route *geojson.FeatureCollection
}

func NewMemoryRouteStore() *MemoryRouteStore {
	return &MemoryRouteStore{route: domain.EmptyRoute()}
}

func (s *MemoryRouteStore) Replace(_ context.Context, route *geojson.FeatureCollection) error {
	if route == nil {
		route = domain.EmptyRoute()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = route
	return nil
}

func (s *MemoryRouteStore) Current(_ context.Context) (*geojson.FeatureCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route, nil
}
