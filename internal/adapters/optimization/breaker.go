package optimization

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls to the optimizer.
var ErrCircuitOpen = errors.New("optimizer circuit breaker open")

const (
	breakerMaxRequests      = 1
	breakerInterval         = 60 * time.Second
	breakerTimeout          = 30 * time.Second
	breakerFailureThreshold = 5
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker state changed name=%s from=%s to=%s", name, from, to)
		},
		IsSuccessful: breakerSuccess,
	})
}

// breakerSuccess counts only upstream unavailability against the breaker.
// Caller cancellations and rejected input say nothing about the service health.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var he *httpStatusError
	if errors.As(err, &he) && he.Code >= 400 && he.Code < 500 && he.Code != 429 {
		return true
	}
	return false
}

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}
