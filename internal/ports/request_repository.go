package ports

import (
	"context"
	"dispatch-planner-service/internal/domain"
)

// Port: a boundary for storing and retrieving drop-off requests.
type RequestRepository interface {
	// Store a newly created request.
	SaveRequest(ctx context.Context, req *domain.DropoffRequest) error
	// Return every known request ordered by creation time, then id.
	ListRequests(ctx context.Context) ([]*domain.DropoffRequest, error)
	// Move the given requests to the Routed status. Unknown ids are ignored.
	MarkRouted(ctx context.Context, ids []string) error
}
