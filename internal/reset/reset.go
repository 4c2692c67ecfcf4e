// Package reset implements the physical factory reset: a long enough press of the reset
// button erases the durable valve state and restarts the daemon.
package reset

import (
	"context"
	"errors"
	"time"

	"irrigation_valve/internal/gpio"
	"irrigation_valve/internal/logger"
)

const (
	// MinDebounce is the shortest press accepted as a reset.
	MinDebounce = 200 * time.Millisecond

	defaultPoll  = 20 * time.Millisecond
	eraseTimeout = 5 * time.Second
)

// Eraser deletes the durable valve state. It must also stop the state from being
// written back before the restart.
type Eraser interface {
	Erase(ctx context.Context) error
}

// Restarter replaces the running process. On success it normally does not return.
type Restarter interface {
	Restart() error
}

// RestartFunc adapts a function to Restarter.
type RestartFunc func() error

func (f RestartFunc) Restart() error { return f() }

// Watcher polls the reset button and fires once a press has been held for the debounce
// period. The press is measured on the monotonic clock, independent of valve timing.
type Watcher struct {
	button   gpio.Button
	store    Eraser
	restart  Restarter
	debounce time.Duration
	poll     time.Duration
	log      *logger.Logger
}

func NewWatcher(button gpio.Button, store Eraser, restart Restarter, debounce time.Duration, log *logger.Logger) *Watcher {
	if debounce < MinDebounce {
		debounce = MinDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		button:   button,
		store:    store,
		restart:  restart,
		debounce: debounce,
		poll:     defaultPoll,
		log:      log,
	}
}

// Run polls until ctx is canceled or a reset was carried out. A button already held when
// Run starts has to be released first, so a stuck button cannot cause a reset loop.
func (w *Watcher) Run(ctx context.Context) error {
	t := time.NewTicker(w.poll)
	defer t.Stop()

	var (
		armed        bool
		pressedSince time.Time
		readFailing  bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		pressed, err := w.button.Pressed()
		if err != nil {
			if !readFailing {
				w.log.Warnw("reset_button_read_failed", "err", err)
			}
			readFailing = true
			pressedSince = time.Time{}
			continue
		}
		readFailing = false

		if !pressed {
			armed = true
			pressedSince = time.Time{}
			continue
		}
		if !armed {
			continue
		}
		if pressedSince.IsZero() {
			pressedSince = time.Now()
			continue
		}
		if time.Since(pressedSince) < w.debounce {
			continue
		}

		if err := w.fire(ctx); err != nil {
			if errors.Is(err, errEraseFailed) {
				armed = false
				pressedSince = time.Time{}
				continue
			}
			return err
		}
		return nil
	}
}

var errEraseFailed = errors.New("erase failed")

func (w *Watcher) fire(ctx context.Context) error {
	w.log.Warnw("reset_triggered", "held", w.debounce.String())

	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eraseTimeout)
	err := w.store.Erase(ectx)
	cancel()
	if err != nil {
		w.log.Errorw("reset_erase_failed", "err", err)
		return errEraseFailed
	}

	w.log.Warnw("reset_restarting")
	if err := w.restart.Restart(); err != nil {
		w.log.Errorw("reset_restart_failed", "err", err)
		return err
	}
	return nil
}
