package ports

import (
	"context"
	"dispatch-planner-service/internal/domain"
)

// Contract for submitting a plan to an external trip-optimization service.
type TripOptimizer interface {
	// Return the optimized trips and waypoints for the plan.
	// A result with no trips is not an error.
	Optimize(ctx context.Context, plan *domain.PlanRequest) (*domain.RouteResult, error)
}
