package gpio

import (
	"sync"

	"irrigation_valve/internal/logger"
)

// SimulatedRelay stands in for the relay on machines without GPIO. It only logs.
type SimulatedRelay struct {
	mu  sync.Mutex
	on  bool
	log *logger.Logger
}

func NewSimulatedRelay(log *logger.Logger) *SimulatedRelay {
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatedRelay{log: log}
}

func (r *SimulatedRelay) Set(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.on != on {
		r.log.Infow("relay_simulated", "on", on)
	}
	r.on = on
	return nil
}

// On reports the last commanded level.
func (r *SimulatedRelay) On() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.on
}

func (r *SimulatedRelay) Close() error {
	return r.Set(false)
}
