package service

import (
	"context"
	"time"

	"irrigation_valve/internal/models"
)

// Valve exposes the control operations of the Control Surface.
type Valve interface {
	Toggle(ctx context.Context) (models.Status, error)
	SetMode(ctx context.Context, mode models.Mode) (models.Status, error)
	SetSchedule(ctx context.Context, sched models.Schedule) (models.Schedule, error)
}

// Monitoring exposes the read-only status snapshot.
type Monitoring interface {
	Status(ctx context.Context) (models.Status, error)
}

// Runner drives the periodic control cycle. Stop via context cancellation.
type Runner interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates the controller facets used by the transport layer.
type Service struct {
	Valve
	Monitoring
	Runner
}

// NewService exposes one controller through all facets.
func NewService(c *Controller) *Service {
	return &Service{
		Valve:      c,
		Monitoring: c,
		Runner:     c,
	}
}
