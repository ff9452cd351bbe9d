package domain

import (
	"strconv"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Point converts the coordinates to an orb point for GeoJSON output.
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// String renders "lon,lat" with the shortest exact decimal form of each value.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

func CoordinatesFromPoint(p orb.Point) Coordinates {
	return Coordinates{Lon: p.Lon(), Lat: p.Lat()}
}
