package ports

import (
	"context"

	"github.com/paulmach/orb/geojson"
)

// Holder of the currently displayed route geometry.
type RouteStore interface {
	// Replace the displayed route.
	Replace(ctx context.Context, route *geojson.FeatureCollection) error
	// Return the displayed route, or an empty collection when nothing was stored yet.
	Current(ctx context.Context) (*geojson.FeatureCollection, error)
}

// Optional cache of raw optimizer response bodies keyed by the exact query.
type TripCache interface {
	Get(ctx context.Context, query string) ([]byte, bool, error)
	Put(ctx context.Context, query string, body []byte) error
}
