package repositories

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// In-memory implementation of the RequestRepository port.
// Stored requests are copies, so callers cannot mutate repository state.
type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]domain.DropoffRequest
}

func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{requests: make(map[string]domain.DropoffRequest)}
}

func (m *MemoryRequestRepository) SaveRequest(_ context.Context, req *domain.DropoffRequest) error {
	if req == nil || req.ID == "" {
		return errors.New("save request: request id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[req.ID]; ok {
		return fmt.Errorf("save request: id %s already exists", req.ID)
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *MemoryRequestRepository) ListRequests(_ context.Context) ([]*domain.DropoffRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.DropoffRequest, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, &r)
	}

	slices.SortFunc(out, func(a, b *domain.DropoffRequest) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return out, nil
}

func (m *MemoryRequestRepository) MarkRouted(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		r, ok := m.requests[id]
		if !ok {
			continue
		}
		r.MarkRouted()
		m.requests[id] = r
	}
	return nil
}
