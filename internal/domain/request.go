package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	// Created and not yet part of a successful route submission.
	RequestPending RequestStatus = "pending"
	// Included in at least one successful route submission.
	// Routed requests stay in the pending set and are planned again.
	RequestRouted RequestStatus = "routed"
)

// A drop-off placed by a dispatcher. Coordinates and CreatedAt never change
// after creation; only Status moves forward.
type DropoffRequest struct {
	ID          string
	Coordinates Coordinates
	CreatedAt   time.Time
	Status      RequestStatus
}

func NewDropoffRequest(coords Coordinates, createdAt time.Time) *DropoffRequest {
	return &DropoffRequest{
		ID:          uuid.NewString(),
		Coordinates: coords,
		CreatedAt:   createdAt,
		Status:      RequestPending,
	}
}

// NeedsPickup reports whether the request was placed after the vehicle last
// left the depot, so its goods still have to be collected there.
func (r *DropoffRequest) NeedsPickup(lastDepotVisit time.Time) bool {
	return r.CreatedAt.After(lastDepotVisit)
}

// MarkRouted moves the request to Routed. It is a no-op for routed requests.
func (r *DropoffRequest) MarkRouted() {
	r.Status = RequestRouted
}
