package handlers

import (
	"dispatch-planner-service/internal/api/dto"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/platform/metrics"
	"dispatch-planner-service/internal/services"
	"errors"
	"log"
	"net/http"

	"github.com/paulmach/orb/geojson"
)

// DropoffHandler creates and lists drop-off requests.
type DropoffHandler struct {
	Dispatcher *services.Dispatcher
}

func (h *DropoffHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

// create stores the drop-off and runs a planning cycle. The drop-off is
// created even when the cycle fails; the route part reports what happened.
func (h *DropoffHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CoordinatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Dispatcher.AddDropoff(r.Context(), domain.Coordinates{Lon: *req.Lon, Lat: *req.Lat})
	if err != nil {
		log.Printf("add dropoff failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateDropoffResponse{
		Dropoff: toDropoffResponse(res.Request),
		Route:   routeStatus(res.Outcome, res.ReplanErr),
	})
}

func (h *DropoffHandler) list(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Dispatcher.PendingRequests(r.Context())
	if err != nil {
		log.Printf("list dropoffs failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDropoffsResponse{Dropoffs: make([]dto.DropoffResponse, 0, len(reqs))}
	for _, req := range reqs {
		res.Dropoffs = append(res.Dropoffs, toDropoffResponse(req))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// GeoJSON returns the drop-offs as point features for map display.
func (h *DropoffHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	reqs, err := h.Dispatcher.PendingRequests(r.Context())
	if err != nil {
		log.Printf("list dropoffs failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, req := range reqs {
		f := geojson.NewFeature(req.Coordinates.Point())
		f.Properties["key"] = req.ID
		f.Properties["orderTime"] = req.CreatedAt.UnixMilli()
		f.Properties["status"] = string(req.Status)
		fc.Append(f)
	}

	writeJSON(w, r, http.StatusOK, fc)
}

func toDropoffResponse(req *domain.DropoffRequest) dto.DropoffResponse {
	return dto.DropoffResponse{
		ID:        req.ID,
		Lon:       req.Coordinates.Lon,
		Lat:       req.Coordinates.Lat,
		CreatedAt: req.CreatedAt,
		Status:    string(req.Status),
	}
}

func routeStatus(outcome *services.Outcome, err error) dto.RouteStatusResponse {
	switch {
	case errors.Is(err, services.ErrVehicleUnlocated):
		return dto.RouteStatusResponse{Status: metrics.OutcomeSkipped, Error: err.Error()}
	case errors.Is(err, services.ErrSuperseded):
		return dto.RouteStatusResponse{Status: metrics.OutcomeSuperseded}
	case err != nil:
		return dto.RouteStatusResponse{Status: metrics.OutcomeFailed, Error: "route request failed"}
	}

	status := metrics.OutcomeRouted
	if len(outcome.Route.Features) == 0 {
		status = metrics.OutcomeNoRoute
	}

	return dto.RouteStatusResponse{
		Status:         status,
		Stops:          outcome.Plan.StopCount(),
		Waypoints:      outcome.Waypoints,
		CeilingReached: outcome.CeilingReached,
	}
}
