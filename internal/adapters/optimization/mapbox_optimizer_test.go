package optimization

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripBodyOK = `{
  "code": "Ok",
  "trips": [{
    "geometry": {"type": "LineString", "coordinates": [[77.358, 28.684], [77.352, 28.682], [77.351, 28.682]]},
    "distance": 1523.4,
    "duration": 301.2
  }],
  "waypoints": [
    {"name": "A", "location": [77.358, 28.684], "waypoint_index": 0, "trips_index": 0},
    {"name": "B", "location": [77.352, 28.682], "waypoint_index": 1, "trips_index": 0}
  ]
}`

func testPlan() *domain.PlanRequest {
	return &domain.PlanRequest{
		Coordinates: []domain.Coordinates{{Lon: 77.358, Lat: 28.684}},
		DepotIndex:  -1,
		FinalStop:   domain.Coordinates{Lon: 77.352, Lat: 28.682},
	}
}

func newTestOptimizer(t *testing.T, baseURL string, cache *memoryTripCache) *MapboxOptimizer {
	t.Helper()

	var o *MapboxOptimizer
	var err error
	if cache != nil {
		o, err = NewMapboxOptimizer("pk.test", baseURL, cache)
	} else {
		o, err = NewMapboxOptimizer("pk.test", baseURL, nil)
	}
	require.NoError(t, err)
	o.backoff = time.Millisecond
	return o
}

type memoryTripCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (c *memoryTripCache) Get(_ context.Context, query string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[query]
	return b, ok, nil
}

func (c *memoryTripCache) Put(_ context.Context, query string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[query] = body
	return nil
}

func TestNewMapboxOptimizerRequiresToken(t *testing.T) {
	_, err := NewMapboxOptimizer("", "", nil)
	require.Error(t, err)
}

func TestOptimizeDecodesTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pk.test", r.URL.Query().Get("access_token"))
		assert.Equal(t, "/optimized-trips/v1/mapbox/driving/77.358,28.684;77.352,28.682", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tripBodyOK))
	}))
	defer srv.Close()

	o := newTestOptimizer(t, srv.URL, nil)

	result, err := o.Optimize(context.Background(), testPlan())
	require.NoError(t, err)

	assert.Equal(t, "Ok", result.Code)
	require.Len(t, result.Trips, 1)
	assert.True(t, result.HasRoute())
	assert.InDelta(t, 1523.4, result.Trips[0].Distance, 1e-9)
	require.Len(t, result.Waypoints, 2)
	assert.Equal(t, domain.Coordinates{Lon: 77.352, Lat: 28.682}, result.Waypoints[1].Location)
	assert.False(t, result.CeilingReached())
}

func TestOptimizeNoTripsCodeIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoTrips","message":"no trips found","waypoints":[]}`))
	}))
	defer srv.Close()

	o := newTestOptimizer(t, srv.URL, nil)

	result, err := o.Optimize(context.Background(), testPlan())
	require.NoError(t, err)
	assert.Equal(t, "NoTrips", result.Code)
	assert.False(t, result.HasRoute())
}

func TestOptimizeRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(tripBodyOK))
	}))
	defer srv.Close()

	o := newTestOptimizer(t, srv.URL, nil)

	result, err := o.Optimize(context.Background(), testPlan())
	require.NoError(t, err)
	assert.True(t, result.HasRoute())
	assert.Equal(t, int32(3), calls.Load())
}

func TestOptimizeDoesNotRetryInvalidInput(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"InvalidInput","message":"Too many coordinates"}`))
	}))
	defer srv.Close()

	o := newTestOptimizer(t, srv.URL, nil)

	_, err := o.Optimize(context.Background(), testPlan())
	require.Error(t, err)

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOptimizeServesRepeatedPlansFromCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(tripBodyOK))
	}))
	defer srv.Close()

	o := newTestOptimizer(t, srv.URL, &memoryTripCache{})

	for i := 0; i < 3; i++ {
		result, err := o.Optimize(context.Background(), testPlan())
		require.NoError(t, err)
		assert.True(t, result.HasRoute())
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestOptimizeOpensCircuitAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := newTestOptimizer(t, srv.URL, nil)
	o.maxAttempts = 1

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := o.Optimize(context.Background(), testPlan())
		require.Error(t, err)
	}

	_, err := o.Optimize(context.Background(), testPlan())
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(breakerFailureThreshold), calls.Load())
}

func TestOptimizeHonoursCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(tripBodyOK))
	}))
	defer srv.Close()
	defer close(release)

	o := newTestOptimizer(t, srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Optimize(ctx, testPlan())
	require.ErrorIs(t, err, context.Canceled)
}
