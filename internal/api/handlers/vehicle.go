package handlers

import (
	"dispatch-planner-service/internal/api/dto"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/services"
	"errors"
	"net/http"
	"time"
)

// VehicleHandler receives location fixes and depot visits.
type VehicleHandler struct {
	Dispatcher *services.Dispatcher
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, r, http.StatusOK, toVehicleResponse(h.Dispatcher.Vehicle()))
}

func (h *VehicleHandler) Location(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}

	var req dto.CoordinatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.Dispatcher.UpdateVehicleLocation(domain.Coordinates{Lon: *req.Lon, Lat: *req.Lat})
	writeJSON(w, r, http.StatusOK, toVehicleResponse(h.Dispatcher.Vehicle()))
}

// DepotVisit records that the vehicle collected goods at the depot.
// The body is optional; without "at" the visit is stamped now.
func (h *VehicleHandler) DepotVisit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.DepotVisitRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	h.Dispatcher.RecordDepotVisit(at)
	writeJSON(w, r, http.StatusOK, toVehicleResponse(h.Dispatcher.Vehicle()))
}

func toVehicleResponse(v domain.Vehicle) dto.VehicleResponse {
	res := dto.VehicleResponse{Located: v.Located}
	if v.Located {
		lon, lat := v.Location.Lon, v.Location.Lat
		res.Lon = &lon
		res.Lat = &lat
	}
	if !v.LastDepotVisit.IsZero() {
		at := v.LastDepotVisit
		res.LastDepotVisit = &at
	}
	return res
}
