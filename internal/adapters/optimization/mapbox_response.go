package optimization

import (
	"dispatch-planner-service/internal/domain"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

const codeOK = "Ok"

type tripsResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Trips     []tripBody     `json:"trips"`
	Waypoints []waypointBody `json:"waypoints"`
}

type tripBody struct {
	Geometry *geojson.Geometry `json:"geometry"`
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
}

type waypointBody struct {
	Name          string    `json:"name"`
	Location      []float64 `json:"location"`
	WaypointIndex int       `json:"waypoint_index"`
	TripsIndex    int       `json:"trips_index"`
}

// decodeTrips converts an optimized-trips body into a RouteResult.
// A non-"Ok" code is kept on the result with its trips dropped.
func decodeTrips(body []byte) (*domain.RouteResult, error) {
	var tr tripsResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode trips response: %w", err)
	}

	result := &domain.RouteResult{
		Code:      tr.Code,
		Trips:     []domain.Trip{},
		Waypoints: make([]domain.Waypoint, 0, len(tr.Waypoints)),
	}

	for i, w := range tr.Waypoints {
		if len(w.Location) != 2 {
			return nil, fmt.Errorf("decode trips response: waypoint %d: invalid location %v", i, w.Location)
		}
		result.Waypoints = append(result.Waypoints, domain.Waypoint{
			Name:          w.Name,
			Location:      domain.Coordinates{Lon: w.Location[0], Lat: w.Location[1]},
			WaypointIndex: w.WaypointIndex,
			TripsIndex:    w.TripsIndex,
		})
	}

	if tr.Code != "" && tr.Code != codeOK {
		return result, nil
	}

	for _, t := range tr.Trips {
		result.Trips = append(result.Trips, domain.Trip{
			Geometry: t.Geometry,
			Distance: t.Distance,
			Duration: t.Duration,
		})
	}

	return result, nil
}
