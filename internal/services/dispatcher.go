package services

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/metrics"
	"dispatch-planner-service/internal/platform/obs"
	"dispatch-planner-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
)

var (
	// A newer planning cycle started before this one could publish its route.
	ErrSuperseded = errors.New("planning cycle superseded")
	// No location fix has been received for the vehicle yet.
	ErrVehicleUnlocated = errors.New("vehicle location unknown")
	// The optimizer could not be reached or returned an unusable response.
	ErrOptimizationFailed = errors.New("trip optimization failed")
)

// Outcome of a planning cycle that reached the optimizer.
type Outcome struct {
	Plan           *domain.PlanRequest
	Route          *geojson.FeatureCollection
	Waypoints      int
	CeilingReached bool
}

// DropoffResult is returned by AddDropoff. The request is always set; the
// replan part is best effort and ReplanErr carries its failure, if any.
type DropoffResult struct {
	Request   *domain.DropoffRequest
	Outcome   *Outcome
	ReplanErr error
}

// Dispatcher runs planning cycles: it snapshots the vehicle and pending set,
// submits the plan to the optimizer and publishes the resulting route.
//
// Starting a cycle cancels the one in flight, and only the most recent cycle
// may replace the displayed route. The Dispatcher is safe for concurrent use.
type Dispatcher struct {
	planner   *Planner
	optimizer ports.TripOptimizer
	routes    ports.RouteStore
	metrics   *metrics.Metrics
	now       func() time.Time

	mu         sync.Mutex
	vehicle    domain.Vehicle
	generation uint64
	cancel     context.CancelFunc
}

func NewDispatcher(
	planner *Planner,
	optimizer ports.TripOptimizer,
	routes ports.RouteStore,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		planner:   planner,
		optimizer: optimizer,
		routes:    routes,
		metrics:   m,
		now:       time.Now,
	}
}

func (d *Dispatcher) Depot() domain.Coordinates { return d.planner.Depot }

// Vehicle returns a copy of the current vehicle state.
func (d *Dispatcher) Vehicle() domain.Vehicle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vehicle
}

// UpdateVehicleLocation records a location fix. It does not trigger a cycle.
func (d *Dispatcher) UpdateVehicleLocation(c domain.Coordinates) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vehicle.MoveTo(c)
}

// RecordDepotVisit marks the goods of every request created up to at as collected.
func (d *Dispatcher) RecordDepotVisit(at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vehicle.VisitDepot(at)
}

func (d *Dispatcher) PendingRequests(ctx context.Context) ([]*domain.DropoffRequest, error) {
	return d.planner.PendingRequests(ctx)
}

func (d *Dispatcher) CurrentRoute(ctx context.Context) (*geojson.FeatureCollection, error) {
	route, err := d.routes.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("current route: %w", err)
	}
	return route, nil
}

// PreviewPlan builds the plan the next cycle would submit, without submitting it.
func (d *Dispatcher) PreviewPlan(ctx context.Context) (*domain.PlanRequest, error) {
	vehicle := d.Vehicle()
	if !vehicle.Located {
		return nil, ErrVehicleUnlocated
	}

	pending, err := d.planner.PendingRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("preview plan: %w", err)
	}

	return BuildPlanRequest(vehicle.Location, d.planner.Depot, pending, vehicle.LastDepotVisit), nil
}

// AddDropoff stores a new request created now and starts a planning cycle.
func (d *Dispatcher) AddDropoff(ctx context.Context, coords domain.Coordinates) (*DropoffResult, error) {
	req, err := d.planner.AddRequest(ctx, coords, d.now())
	if err != nil {
		return nil, fmt.Errorf("add dropoff: %w", err)
	}
	log.Printf("req_id=%s dropoff added id=%s coords=%s", obs.RequestID(ctx), req.ID, req.Coordinates)

	outcome, err := d.Replan(ctx)
	return &DropoffResult{Request: req, Outcome: outcome, ReplanErr: err}, nil
}

// Replan runs one planning cycle.
//
// On optimizer failure the displayed route is left untouched. A result
// without trips clears it. Requests included in a successful submission are
// marked routed but stay in the pending set.
func (d *Dispatcher) Replan(ctx context.Context) (_ *Outcome, err error) {
	defer obs.Time(ctx, "dispatcher.Replan")(&err)

	d.mu.Lock()
	vehicle := d.vehicle
	if !vehicle.Located {
		d.mu.Unlock()
		d.record(metrics.OutcomeSkipped)
		log.Printf("req_id=%s replan skipped: vehicle location unknown", obs.RequestID(ctx))
		return nil, ErrVehicleUnlocated
	}

	if d.cancel != nil {
		d.cancel()
	}
	d.generation++
	gen := d.generation
	cycleCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	defer d.release(gen, cancel)

	pending, err := d.planner.PendingRequests(cycleCtx)
	if err != nil {
		d.record(metrics.OutcomeFailed)
		return nil, fmt.Errorf("replan: %w", err)
	}
	if d.metrics != nil {
		d.metrics.PendingRequests.Set(float64(len(pending)))
	}

	plan := BuildPlanRequest(vehicle.Location, d.planner.Depot, pending, vehicle.LastDepotVisit)
	if d.metrics != nil {
		d.metrics.PlanStops.Observe(float64(plan.StopCount()))
	}

	start := time.Now()
	result, err := d.optimizer.Optimize(cycleCtx, plan)
	if d.metrics != nil {
		d.metrics.OptimizeDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if d.superseded(gen) {
			d.record(metrics.OutcomeSuperseded)
			return nil, ErrSuperseded
		}
		d.record(metrics.OutcomeFailed)
		log.Printf("req_id=%s route request failed, keeping displayed route: %v", obs.RequestID(ctx), err)
		return nil, fmt.Errorf("%w: %w", ErrOptimizationFailed, err)
	}

	route := ApplyRouteResult(result)

	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		d.record(metrics.OutcomeSuperseded)
		return nil, ErrSuperseded
	}
	err = d.routes.Replace(cycleCtx, route)
	d.mu.Unlock()
	if err != nil {
		d.record(metrics.OutcomeFailed)
		return nil, fmt.Errorf("replan: replace displayed route: %w", err)
	}

	if err := d.planner.Repo.MarkRouted(ctx, plan.RequestIDs); err != nil {
		log.Printf("req_id=%s mark routed failed: %v", obs.RequestID(ctx), err)
	}

	outcome := &Outcome{
		Plan:           plan,
		Route:          route,
		Waypoints:      len(result.Waypoints),
		CeilingReached: result.CeilingReached(),
	}

	if outcome.CeilingReached {
		if d.metrics != nil {
			d.metrics.WaypointCeilingTotal.Inc()
		}
		log.Printf("req_id=%s maximum number of waypoints reached waypoints=%d stops=%d",
			obs.RequestID(ctx), outcome.Waypoints, plan.StopCount())
	}

	if result.HasRoute() {
		d.record(metrics.OutcomeRouted)
	} else {
		d.record(metrics.OutcomeNoRoute)
		log.Printf("req_id=%s no route available code=%s", obs.RequestID(ctx), result.Code)
	}

	return outcome, nil
}

func (d *Dispatcher) superseded(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen != d.generation
}

// release cancels the cycle context and forgets it if no newer cycle took over.
func (d *Dispatcher) release(gen uint64, cancel context.CancelFunc) {
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen == d.generation {
		d.cancel = nil
	}
}

func (d *Dispatcher) record(outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.CyclesTotal.WithLabelValues(outcome).Inc()
}
