package dto

import "time"

type CoordinatesRequest struct {
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
}

type DropoffResponse struct {
	ID        string    `json:"id"`
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

type ListDropoffsResponse struct {
	Dropoffs []DropoffResponse `json:"dropoffs"`
}

type RouteStatusResponse struct {
	Status         string `json:"status"`
	Stops          int    `json:"stops,omitempty"`
	Waypoints      int    `json:"waypoints,omitempty"`
	CeilingReached bool   `json:"ceiling_reached"`
	Error          string `json:"error,omitempty"`
}

type CreateDropoffResponse struct {
	Dropoff DropoffResponse     `json:"dropoff"`
	Route   RouteStatusResponse `json:"route"`
}
