package domain

import (
	"github.com/paulmach/orb/geojson"
)

// Stop-count ceiling of the optimization service, vehicle and depot included.
// A response with exactly this many waypoints means the ceiling was hit.
const MaxWaypoints = 12

// A single optimized trip as returned by the optimizer.
type Trip struct {
	Geometry *geojson.Geometry
	Distance float64
	Duration float64
}

// Per-stop metadata returned alongside the trips.
type Waypoint struct {
	Name          string
	Location      Coordinates
	WaypointIndex int
	TripsIndex    int
}

// Optimizer output for a PlanRequest.
type RouteResult struct {
	Code      string
	Trips     []Trip
	Waypoints []Waypoint
}

// HasRoute reports whether the result carries a drawable first trip.
func (r *RouteResult) HasRoute() bool {
	return r != nil && len(r.Trips) > 0 && r.Trips[0].Geometry != nil && r.Trips[0].Geometry.Geometry() != nil
}

// CeilingReached reports whether the service capped the stop count.
func (r *RouteResult) CeilingReached() bool {
	return r != nil && len(r.Waypoints) == MaxWaypoints
}

// EmptyRoute returns the "nothing" collection used to clear the displayed route.
func EmptyRoute() *geojson.FeatureCollection {
	return geojson.NewFeatureCollection()
}
