package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch-planner-service/internal/domain"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port            string
	MapboxToken     string
	MapboxBaseURL   string
	DatabaseURL     string
	RedisURL        string
	Depot           domain.Coordinates
	InitialVehicle  *domain.Coordinates
	RouteCacheTTL   time.Duration
	SimulateDropoff bool
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load builds a Config from the environment. MAPBOX_ACCESS_TOKEN is required.
func Load() (*Config, error) {
	token := Get("MAPBOX_ACCESS_TOKEN", "")
	if token == "" {
		return nil, errors.New("load config: MAPBOX_ACCESS_TOKEN is required")
	}

	depot, err := coordinates("DEPOT_LON", "DEPOT_LAT", "77.35172", "28.68234")
	if err != nil {
		return nil, fmt.Errorf("load config: depot: %w", err)
	}

	var vehicle *domain.Coordinates
	if Get("VEHICLE_LON", "") != "" || Get("VEHICLE_LAT", "") != "" {
		v, err := coordinates("VEHICLE_LON", "VEHICLE_LAT", "", "")
		if err != nil {
			return nil, fmt.Errorf("load config: vehicle: %w", err)
		}
		vehicle = &v
	}

	ttl, err := time.ParseDuration(Get("ROUTE_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("load config: ROUTE_CACHE_TTL: %w", err)
	}

	simulate, err := strconv.ParseBool(Get("SIMULATE_DROPOFFS", "false"))
	if err != nil {
		return nil, fmt.Errorf("load config: SIMULATE_DROPOFFS: %w", err)
	}

	return &Config{
		Port:            Get("PORT", "8080"),
		MapboxToken:     token,
		MapboxBaseURL:   Get("MAPBOX_BASE_URL", "https://api.mapbox.com"),
		DatabaseURL:     Get("DATABASE_URL", ""),
		RedisURL:        Get("REDIS_URL", ""),
		Depot:           depot,
		InitialVehicle:  vehicle,
		RouteCacheTTL:   ttl,
		SimulateDropoff: simulate,
	}, nil
}

func coordinates(lonKey, latKey, lonDefault, latDefault string) (domain.Coordinates, error) {
	lon, err := strconv.ParseFloat(Get(lonKey, lonDefault), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%s: %w", lonKey, err)
	}
	lat, err := strconv.ParseFloat(Get(latKey, latDefault), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%s: %w", latKey, err)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return domain.Coordinates{}, fmt.Errorf("%s/%s out of range: %v,%v", lonKey, latKey, lon, lat)
	}
	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}
