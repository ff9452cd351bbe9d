package optimization

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/obs"
	"dispatch-planner-service/internal/ports"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

// MapboxOptimizer implements TripOptimizer using the Mapbox Optimized Trips API.
//
// It coordinates:
//   - Query assembly from a PlanRequest
//   - An optional response cache keyed by the token-free query
//   - De-duplication of identical concurrent queries
//   - External API calls with retry/backoff behind a circuit breaker
//
// The optimizer is safe for concurrent use.
type MapboxOptimizer struct {
	session     *http.Client
	accessToken string
	baseURL     string
	cache       ports.TripCache
	breaker     *gobreaker.CircuitBreaker
	group       singleflight.Group

	maxAttempts int
	backoff     time.Duration
}

func NewMapboxOptimizer(accessToken, baseURL string, cache ports.TripCache) (*MapboxOptimizer, error) {
	if accessToken == "" {
		return nil, errors.New("mapbox access token is empty")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &MapboxOptimizer{
		session:     &http.Client{Timeout: 10 * time.Second},
		accessToken: accessToken,
		baseURL:     baseURL,
		cache:       cache,
		breaker:     newBreaker("mapbox-optimized-trips"),
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}, nil
}

// RedactedQueryURL returns the query URL for the plan with the token hidden.
func (o *MapboxOptimizer) RedactedQueryURL(plan *domain.PlanRequest) string {
	return AssembleQueryURL(o.baseURL, redacted, plan)
}

// Optimize submits the plan and returns the decoded trips and waypoints.
func (o *MapboxOptimizer) Optimize(
	ctx context.Context,
	plan *domain.PlanRequest,
) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "mapbox.Optimize")(&err)

	if plan == nil || len(plan.Coordinates) == 0 {
		return nil, errors.New("optimize: plan must contain the vehicle position")
	}

	key := cacheKey(plan)

	if o.cache != nil {
		body, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			log.Printf("trip cache read failed: %v", err)
		} else if ok {
			result, err := decodeTrips(body)
			if err == nil {
				return result, nil
			}
			log.Printf("trip cache entry unusable: %v", err)
		}
	}

	// The shared fetch runs detached from any single caller so that one
	// caller giving up does not fail the others waiting on the same query.
	ch := o.group.DoChan(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		return o.fetch(fetchCtx, plan)
	})

	var body []byte
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("optimize: %w", res.Err)
		}
		body = res.Val.([]byte)
	}

	result, err := decodeTrips(body)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	if o.cache != nil && result.Code == codeOK {
		if err := o.cache.Put(ctx, key, body); err != nil {
			log.Printf("trip cache write failed: %v", err)
		}
	}

	return result, nil
}

// fetch performs the GET through the circuit breaker and returns the raw body.
func (o *MapboxOptimizer) fetch(ctx context.Context, plan *domain.PlanRequest) ([]byte, error) {
	endpoint := AssembleQueryURL(o.baseURL, o.accessToken, plan)

	v, err := o.breaker.Execute(func() (any, error) {
		resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
			return o.newRequest(ctx, endpoint)
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read trips response: %w", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("trips request failed: %w", breakerErr(err))
	}

	return v.([]byte), nil
}
