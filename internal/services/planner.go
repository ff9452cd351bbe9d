package services

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"
)

// Planner owns the pending drop-off set and the fixed depot.
type Planner struct {
	Repo  ports.RequestRepository
	Depot domain.Coordinates
}

func NewPlanner(repo ports.RequestRepository, depot domain.Coordinates) *Planner {
	return &Planner{Repo: repo, Depot: depot}
}

// AddRequest creates a pending drop-off at coords and stores it.
// It has no effect on vehicle state.
func (p *Planner) AddRequest(ctx context.Context, coords domain.Coordinates, createdAt time.Time) (*domain.DropoffRequest, error) {
	if p.Repo == nil {
		return nil, errors.New("add request: repository is nil")
	}

	req := domain.NewDropoffRequest(coords, createdAt)
	if err := p.Repo.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("add request: save %s: %w", req.ID, err)
	}

	return req, nil
}

// PendingRequests returns the pending set in planning order.
func (p *Planner) PendingRequests(ctx context.Context) ([]*domain.DropoffRequest, error) {
	reqs, err := p.Repo.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	return reqs, nil
}

// BuildPlanRequest assembles the stop list and pickup constraints for one
// optimization request.
//
// The vehicle position always comes first. When at least one request was
// created after lastDepotVisit the depot is added once, right after the
// vehicle, and every such request gets a constraint placing the depot before
// it. Requests follow in the given order. The depot is also the fixed final
// stop, carried separately in FinalStop.
//
// The optimizer's stop-count ceiling is not enforced here.
func BuildPlanRequest(
	vehicle domain.Coordinates,
	depot domain.Coordinates,
	pending []*domain.DropoffRequest,
	lastDepotVisit time.Time,
) *domain.PlanRequest {
	plan := &domain.PlanRequest{
		Coordinates: make([]domain.Coordinates, 0, 2+len(pending)),
		DepotIndex:  -1,
		Constraints: []domain.Precedence{},
		FinalStop:   depot,
		RequestIDs:  make([]string, 0, len(pending)),
	}
	plan.Coordinates = append(plan.Coordinates, vehicle)

	needsPickup := false
	for _, r := range pending {
		if r.NeedsPickup(lastDepotVisit) {
			needsPickup = true
			break
		}
	}

	if needsPickup {
		plan.DepotIndex = len(plan.Coordinates)
		plan.Coordinates = append(plan.Coordinates, depot)
	}

	for _, r := range pending {
		plan.Coordinates = append(plan.Coordinates, r.Coordinates)
		plan.RequestIDs = append(plan.RequestIDs, r.ID)

		if needsPickup && r.NeedsPickup(lastDepotVisit) {
			plan.Constraints = append(plan.Constraints, domain.Precedence{
				Before: plan.DepotIndex,
				After:  len(plan.Coordinates) - 1,
			})
		}
	}

	return plan
}

// ApplyRouteResult turns an optimizer result into the route to display.
// A result without a first trip geometry yields the empty collection, which
// clears the displayed route. The same result always yields the same route.
func ApplyRouteResult(result *domain.RouteResult) *geojson.FeatureCollection {
	if !result.HasRoute() {
		return domain.EmptyRoute()
	}

	trip := result.Trips[0]
	feature := geojson.NewFeature(trip.Geometry.Geometry())
	feature.Properties["distance"] = trip.Distance
	feature.Properties["duration"] = trip.Duration

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc
}
