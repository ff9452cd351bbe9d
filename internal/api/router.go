package api

import (
	"dispatch-planner-service/internal/api/handlers"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/metrics"
	"dispatch-planner-service/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	dispatcher *services.Dispatcher,
	m *metrics.Metrics,
	queryURL func(*domain.PlanRequest) string,
) http.Handler {
	mux := http.NewServeMux()

	dropoffs := &handlers.DropoffHandler{Dispatcher: dispatcher}
	vehicle := &handlers.VehicleHandler{Dispatcher: dispatcher}
	route := &handlers.RouteHandler{Dispatcher: dispatcher, QueryURL: queryURL}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/dropoffs", dropoffs.Collection)
	mux.HandleFunc("/dropoffs.geojson", dropoffs.GeoJSON)
	mux.HandleFunc("/vehicle", vehicle.Get)
	mux.HandleFunc("/vehicle/location", vehicle.Location)
	mux.HandleFunc("/vehicle/depot-visit", vehicle.DepotVisit)
	mux.HandleFunc("/route", route.Current)
	mux.HandleFunc("/route/replan", route.Replan)
	mux.HandleFunc("/plan", route.Plan)
	mux.HandleFunc("/depot", route.Depot)
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	return loggingMiddleware(mux)
}
