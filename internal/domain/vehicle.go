package domain

import "time"

// Delivery vehicle position and depot history.
// Located is false until the first location fix arrives.
type Vehicle struct {
	Location       Coordinates
	Located        bool
	LastDepotVisit time.Time
}

// Record a new location fix.
func (v *Vehicle) MoveTo(c Coordinates) {
	v.Location = c
	v.Located = true
}

// Record a depot visit. Visits older than the current one are ignored.
func (v *Vehicle) VisitDepot(at time.Time) {
	if at.After(v.LastDepotVisit) {
		v.LastDepotVisit = at
	}
}
