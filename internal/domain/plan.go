package domain

// Stop at index Before must be visited before the stop at index After.
// Indexes refer to PlanRequest.Coordinates.
type Precedence struct {
	Before int
	After  int
}

// The payload handed to the trip optimizer: the ordered stop list, the
// pickup constraints and the fixed final stop.
// It is derived planning data and is never stored.
type PlanRequest struct {
	// Vehicle first, then the depot when a pickup is needed, then every pending request.
	Coordinates []Coordinates
	// Index of the depot inside Coordinates, or -1 when no pickup is needed.
	DepotIndex  int
	Constraints []Precedence
	// Always the depot; appended after Coordinates when the query is built.
	FinalStop Coordinates
	// Request ids in the same order they appear in Coordinates.
	RequestIDs []string
}

func (p *PlanRequest) NeedsPickup() bool { return p.DepotIndex >= 0 }

// Number of stops sent to the optimizer, final stop included.
func (p *PlanRequest) StopCount() int { return len(p.Coordinates) + 1 }
