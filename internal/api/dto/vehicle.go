package dto

import "time"

type DepotVisitRequest struct {
	At *time.Time `json:"at"`
}

type VehicleResponse struct {
	Located        bool       `json:"located"`
	Lon            *float64   `json:"lon"`
	Lat            *float64   `json:"lat"`
	LastDepotVisit *time.Time `json:"last_depot_visit"`
}
