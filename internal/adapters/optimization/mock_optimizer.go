package optimization

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"sync"
)

// MockOptimizer returns a fixed result or error and records every plan it receives.
// When Gate is non-nil each call blocks until Gate yields or ctx is done.
type MockOptimizer struct {
	Result *domain.RouteResult
	Err    error
	Gate   chan struct{}

	mu    sync.Mutex
	plans []*domain.PlanRequest
}

func NewMockOptimizer(result *domain.RouteResult, err error) *MockOptimizer {
	return &MockOptimizer{Result: result, Err: err}
}

func (m *MockOptimizer) Optimize(ctx context.Context, plan *domain.PlanRequest) (*domain.RouteResult, error) {
	m.mu.Lock()
	m.plans = append(m.plans, plan)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Plans returns the plans received so far.
func (m *MockOptimizer) Plans() []*domain.PlanRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.PlanRequest, len(m.plans))
	copy(out, m.plans)
	return out
}
