package handlers

import (
	"dispatch-planner-service/internal/api/dto"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/services"
	"errors"
	"log"
	"net/http"

	"github.com/paulmach/orb/geojson"
)

// RouteHandler serves the displayed route, the plan preview and the depot.
type RouteHandler struct {
	Dispatcher *services.Dispatcher
	// Renders the optimizer URL for a plan, without the credential.
	QueryURL func(*domain.PlanRequest) string
}

func (h *RouteHandler) Current(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	route, err := h.Dispatcher.CurrentRoute(r.Context())
	if err != nil {
		log.Printf("current route failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) Replan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	outcome, err := h.Dispatcher.Replan(r.Context())
	res := routeStatus(outcome, err)

	switch {
	case errors.Is(err, services.ErrVehicleUnlocated):
		writeJSON(w, r, http.StatusConflict, res)
	case errors.Is(err, services.ErrSuperseded):
		writeJSON(w, r, http.StatusConflict, res)
	case err != nil:
		writeJSON(w, r, http.StatusBadGateway, res)
	default:
		writeJSON(w, r, http.StatusOK, res)
	}
}

func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	plan, err := h.Dispatcher.PreviewPlan(r.Context())
	if errors.Is(err, services.ErrVehicleUnlocated) {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Printf("preview plan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.PlanResponse{
		Coordinates: make([][]float64, 0, len(plan.Coordinates)),
		Constraints: make([][2]int, 0, len(plan.Constraints)),
		FinalStop:   plan.FinalStop.CoordsToList(),
		RequestIDs:  plan.RequestIDs,
		Stops:       plan.StopCount(),
	}
	for _, c := range plan.Coordinates {
		res.Coordinates = append(res.Coordinates, c.CoordsToList())
	}
	for _, c := range plan.Constraints {
		res.Constraints = append(res.Constraints, [2]int{c.Before, c.After})
	}
	if plan.NeedsPickup() {
		idx := plan.DepotIndex
		res.DepotIndex = &idx
	}
	if h.QueryURL != nil {
		res.QueryURL = h.QueryURL(plan)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Depot returns the depot as a single point feature.
func (h *RouteHandler) Depot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(h.Dispatcher.Depot().Point()))
	writeJSON(w, r, http.StatusOK, fc)
}
