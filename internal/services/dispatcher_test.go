package services

import (
	"context"
	"dispatch-planner-service/internal/adapters/cache"
	"dispatch-planner-service/internal/adapters/optimization"
	"dispatch-planner-service/internal/adapters/repositories"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/metrics"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func okResult(line orb.LineString, waypoints int) *domain.RouteResult {
	return &domain.RouteResult{
		Code:      "Ok",
		Trips:     []domain.Trip{{Geometry: geojson.NewGeometry(line), Distance: 900, Duration: 180}},
		Waypoints: make([]domain.Waypoint, waypoints),
	}
}

type dispatcherFixture struct {
	d         *Dispatcher
	repo      *repositories.MemoryRequestRepository
	routes    *cache.MemoryRouteStore
	optimizer *optimization.MockOptimizer
}

func newDispatcherFixture(result *domain.RouteResult, err error) *dispatcherFixture {
	repo := repositories.NewMemoryRequestRepository()
	routes := cache.NewMemoryRouteStore()
	opt := optimization.NewMockOptimizer(result, err)

	d := NewDispatcher(NewPlanner(repo, testDepot), opt, routes, metrics.New())
	return &dispatcherFixture{d: d, repo: repo, routes: routes, optimizer: opt}
}

func TestReplanSkipsUnlocatedVehicle(t *testing.T) {
	f := newDispatcherFixture(okResult(orb.LineString{{0, 0}, {1, 1}}, 2), nil)

	_, err := f.d.Replan(context.Background())
	if !errors.Is(err, ErrVehicleUnlocated) {
		t.Fatalf("err = %v, want ErrVehicleUnlocated", err)
	}
	if n := len(f.optimizer.Plans()); n != 0 {
		t.Fatalf("optimizer called %d times, want 0", n)
	}
}

func TestAddDropoffPublishesRouteAndMarksRouted(t *testing.T) {
	line := orb.LineString{{77.358, 28.684}, {77.352, 28.682}, {77.351, 28.682}}
	f := newDispatcherFixture(okResult(line, 3), nil)
	ctx := context.Background()

	f.d.UpdateVehicleLocation(testVehicle)

	res, err := f.d.AddDropoff(ctx, domain.Coordinates{Lon: 77.351, Lat: 28.682})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ReplanErr != nil {
		t.Fatalf("unexpected replan error: %v", res.ReplanErr)
	}

	plans := f.optimizer.Plans()
	if len(plans) != 1 {
		t.Fatalf("optimizer called %d times, want 1", len(plans))
	}
	// Never visited the depot, so the new request needs a pickup.
	if plans[0].DepotIndex != 1 || len(plans[0].Constraints) != 1 {
		t.Fatalf("plan = %+v, want depot at 1 with one constraint", plans[0])
	}

	route, _ := f.routes.Current(ctx)
	if len(route.Features) != 1 {
		t.Fatalf("displayed route has %d features, want 1", len(route.Features))
	}

	pending, _ := f.repo.ListRequests(ctx)
	if len(pending) != 1 || pending[0].Status != domain.RequestRouted {
		t.Fatalf("pending = %+v, want one routed request", pending)
	}
}

func TestReplanFailureKeepsDisplayedRoute(t *testing.T) {
	f := newDispatcherFixture(nil, errors.New("connection refused"))
	ctx := context.Background()

	existing := geojson.NewFeatureCollection()
	existing.Append(geojson.NewFeature(orb.LineString{{1, 1}, {2, 2}}))
	_ = f.routes.Replace(ctx, existing)

	f.d.UpdateVehicleLocation(testVehicle)

	_, err := f.d.Replan(ctx)
	if !errors.Is(err, ErrOptimizationFailed) {
		t.Fatalf("err = %v, want ErrOptimizationFailed", err)
	}

	route, _ := f.routes.Current(ctx)
	if route != existing {
		t.Fatalf("displayed route was replaced after a failed request")
	}
}

func TestReplanWithoutTripsClearsRoute(t *testing.T) {
	f := newDispatcherFixture(&domain.RouteResult{Code: "NoTrips"}, nil)
	ctx := context.Background()

	existing := geojson.NewFeatureCollection()
	existing.Append(geojson.NewFeature(orb.LineString{{1, 1}, {2, 2}}))
	_ = f.routes.Replace(ctx, existing)

	f.d.UpdateVehicleLocation(testVehicle)

	outcome, err := f.d.Replan(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Route.Features) != 0 {
		t.Fatalf("expected empty route, got %d features", len(outcome.Route.Features))
	}

	route, _ := f.routes.Current(ctx)
	if len(route.Features) != 0 {
		t.Fatalf("displayed route not cleared")
	}
}

func TestReplanReportsWaypointCeiling(t *testing.T) {
	f := newDispatcherFixture(okResult(orb.LineString{{0, 0}, {1, 1}}, domain.MaxWaypoints), nil)
	ctx := context.Background()

	f.d.UpdateVehicleLocation(testVehicle)
	for i := 0; i < 12; i++ {
		if _, err := f.d.planner.AddRequest(ctx, domain.Coordinates{Lon: 77.35 + float64(i)*0.001, Lat: 28.68}, time.Now()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	outcome, err := f.d.Replan(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.CeilingReached {
		t.Fatalf("expected ceiling to be reported for %d waypoints", outcome.Waypoints)
	}
	if got := len(outcome.Plan.Coordinates); got != 14 {
		t.Fatalf("plan coordinates = %d, want 14", got)
	}
}

func TestDepotVisitDropsPickupConstraints(t *testing.T) {
	f := newDispatcherFixture(okResult(orb.LineString{{0, 0}, {1, 1}}, 3), nil)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	f.d.now = func() time.Time { return base }
	f.d.UpdateVehicleLocation(testVehicle)

	if _, err := f.d.AddDropoff(ctx, domain.Coordinates{Lon: 77.351, Lat: 28.682}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.d.RecordDepotVisit(base.Add(time.Minute))

	plan, err := f.d.PreviewPlan(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.NeedsPickup() || len(plan.Constraints) != 0 {
		t.Fatalf("plan = %+v, want no pickup after depot visit", plan)
	}
}

func TestReplanSupersededCycleDoesNotPublish(t *testing.T) {
	first := orb.LineString{{1, 1}, {2, 2}}
	f := newDispatcherFixture(okResult(first, 2), nil)
	f.optimizer.Gate = make(chan struct{})
	ctx := context.Background()

	f.d.UpdateVehicleLocation(testVehicle)

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.d.Replan(ctx)
		firstErr <- err
	}()
	waitForPlans(t, f.optimizer, 1)

	secondErr := make(chan error, 1)
	go func() {
		_, err := f.d.Replan(ctx)
		secondErr <- err
	}()

	select {
	case err := <-firstErr:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("first cycle err = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first cycle was not cancelled")
	}

	waitForPlans(t, f.optimizer, 2)
	close(f.optimizer.Gate)

	select {
	case err := <-secondErr:
		if err != nil {
			t.Fatalf("second cycle err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second cycle did not finish")
	}

	route, _ := f.routes.Current(ctx)
	if len(route.Features) != 1 {
		t.Fatalf("expected the second cycle's route to be displayed")
	}
}

func waitForPlans(t *testing.T, m *optimization.MockOptimizer, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for len(m.Plans()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("optimizer received %d plans, want %d", len(m.Plans()), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
