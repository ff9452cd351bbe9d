package optimization

import (
	"dispatch-planner-service/internal/domain"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultBaseURL = "https://api.mapbox.com"
	profile        = "mapbox/driving"
	redacted       = "REDACTED"
)

// QueryPath returns the optimized-trips path for the plan: every stop as
// "lon,lat" joined by ";", with the final stop (the depot) appended last.
func QueryPath(plan *domain.PlanRequest) string {
	stops := make([]string, 0, plan.StopCount())
	for _, c := range plan.Coordinates {
		stops = append(stops, c.String())
	}
	stops = append(stops, plan.FinalStop.String())

	return "/optimized-trips/v1/" + profile + "/" + strings.Join(stops, ";")
}

// QueryParams returns the fixed request options plus the pickup
// distributions, without the access token.
func QueryParams(plan *domain.PlanRequest) url.Values {
	q := url.Values{}
	q.Set("overview", "full")
	q.Set("steps", "true")
	q.Set("annotations", "duration,distance,speed")
	q.Set("geometries", "geojson")
	q.Set("source", "first")
	q.Set("destination", "last")
	q.Set("roundtrip", "false")

	if len(plan.Constraints) > 0 {
		pairs := make([]string, 0, len(plan.Constraints))
		for _, c := range plan.Constraints {
			pairs = append(pairs, strconv.Itoa(c.Before)+","+strconv.Itoa(c.After))
		}
		q.Set("distributions", strings.Join(pairs, ";"))
	}

	return q
}

// AssembleQueryURL builds the full GET URL for the plan.
func AssembleQueryURL(baseURL, accessToken string, plan *domain.PlanRequest) string {
	q := QueryParams(plan)
	q.Set("access_token", accessToken)
	return strings.TrimRight(baseURL, "/") + QueryPath(plan) + "?" + q.Encode()
}

// cacheKey identifies a plan independently of the credential.
func cacheKey(plan *domain.PlanRequest) string {
	return QueryPath(plan) + "?" + QueryParams(plan).Encode()
}
