// Package simulation drives the dispatcher with demo input. It is a local
// development harness and is never wired in unless SIMULATE_DROPOFFS is set.
package simulation

import (
	"context"
	"dispatch-planner-service/internal/domain"
	"dispatch-planner-service/internal/services"
	"log"
	"time"
)

// DefaultDropoffs are the demo drop-off points around the default depot.
var DefaultDropoffs = []domain.Coordinates{
	{Lon: 77.358338, Lat: 28.687444},
	{Lon: 77.354338, Lat: 28.687444},
	{Lon: 77.351321, Lat: 28.687444},
	{Lon: 77.352333, Lat: 28.68123},
}

// Dropper is the part of the dispatcher the harness drives.
type Dropper interface {
	AddDropoff(ctx context.Context, coords domain.Coordinates) (*services.DropoffResult, error)
}

// SeedDropoffs adds points one at a time, the first after one interval and
// each following one an interval later. It returns the number added, which
// is short of len(points) only when ctx ends first or a drop-off cannot be stored.
func SeedDropoffs(ctx context.Context, d Dropper, points []domain.Coordinates, interval time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	added := 0
	for _, p := range points {
		select {
		case <-ctx.Done():
			return added, ctx.Err()
		case <-ticker.C:
		}

		res, err := d.AddDropoff(ctx, p)
		if err != nil {
			return added, err
		}
		added++

		if res.ReplanErr != nil {
			log.Printf("simulation: dropoff id=%s added, replan: %v", res.Request.ID, res.ReplanErr)
		} else {
			log.Printf("simulation: dropoff id=%s added", res.Request.ID)
		}
	}

	return added, nil
}
