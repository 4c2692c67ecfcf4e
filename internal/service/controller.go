package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"irrigation_valve/internal/clock"
	"irrigation_valve/internal/logger"
	"irrigation_valve/internal/models"
	"irrigation_valve/internal/repository"

	"golang.org/x/sync/semaphore"
)

// Actuator drives the physical relay.
type Actuator interface {
	Set(on bool) error
}

// ControllerConfig holds the tunables of the valve controller.
type ControllerConfig struct {
	StartupGrace   time.Duration
	LockTimeout    time.Duration
	PersistTimeout time.Duration
	BootID         string
}

const (
	defaultLockTimeout    = 2 * time.Second
	defaultPersistTimeout = 3 * time.Second
)

// Controller owns the ValveState. Every operation runs as one transition under a single
// exclusive lock: read state, compute, actuate, persist, notify.
type Controller struct {
	sem       *semaphore.Weighted
	state     models.ValveState
	guard     *OverheatGuard
	repo      repository.StateRepo
	relay     Actuator
	clock     clock.Source
	observers Observers
	log       *logger.Logger
	cfg       ControllerConfig
}

// NewController restores the valve state from repo (or defaults on first run), drives
// the relay to match it and persists the defaults on first run.
func NewController(ctx context.Context, repo repository.StateRepo, relay Actuator, src clock.Source,
	log *logger.Logger, cfg ControllerConfig, observers ...Observer) (*Controller, error) {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Controller{
		sem:       semaphore.NewWeighted(1),
		repo:      repo,
		relay:     relay,
		clock:     src,
		observers: observers,
		log:       log,
		cfg:       cfg,
	}

	lctx, cancel := context.WithTimeout(ctx, cfg.PersistTimeout)
	snap, err := repo.Load(lctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load valve state: %w", err)
	}
	for _, r := range snap.Repairs {
		log.Warnw("valve_state_repaired", "repair", r)
	}

	c.state = snap.State
	if err := c.state.CheckInvariants(); err != nil {
		log.Warnw("valve_state_reset", "err", err)
		c.state = models.DefaultValveState()
	}

	now := src.Now()
	c.guard = NewOverheatGuard(cfg.StartupGrace, now)
	c.actuate(c.state.Energized)

	var persistErr error
	if !snap.Initialized {
		log.Infow("valve_first_run", "schedule", c.state.Schedule.String())
		persistErr = c.persist(ctx, c.state)
	}
	st := c.statusLocked(now, src.Trusted())
	c.observers.StateChanged(st, ReasonStartup)
	if persistErr != nil {
		c.observers.PersistFailed(persistErr)
	}
	log.Infow("valve_restored",
		"phase", st.Phase,
		"mode", st.Mode,
		"schedule", c.state.Schedule.String(),
		"on_since", c.state.OnSince,
		"off_since", c.state.OffSince,
	)
	return c, nil
}

// mutation edits a copy of the state. It returns the transition reason, or an error to
// abort without any change.
type mutation func(st *models.ValveState, now time.Time, trusted bool) (string, error)

// transition applies fn atomically. force persists even when fn changed nothing.
// A persistence error is returned together with the already-applied new status.
func (c *Controller) transition(ctx context.Context, now time.Time, force bool, fn mutation) (models.Status, error) {
	if err := c.acquire(ctx); err != nil {
		return models.Status{}, err
	}
	defer c.sem.Release(1)

	trusted := c.clock.Trusted()
	next := c.state
	reason, err := fn(&next, now, trusted)
	if err != nil {
		return c.statusLocked(now, trusted), err
	}
	if err := next.CheckInvariants(); err != nil {
		c.log.Errorw("valve_transition_rejected", "reason", reason, "err", err)
		return c.statusLocked(now, trusted), fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	prev := c.state
	changed := !prev.Equal(next)
	if !changed && !force {
		return c.statusLocked(now, trusted), nil
	}

	c.state = next
	c.guard.Track(prev, next, trusted)
	if prev.Energized != next.Energized {
		c.actuate(next.Energized)
	}
	persistErr := c.persist(ctx, next)

	st := c.statusLocked(now, trusted)
	if changed {
		c.log.Infow("valve_transition",
			"reason", reason,
			"from", prev.Phase(),
			"to", next.Phase(),
			"mode", next.Mode,
			"intended", next.IntendedState,
		)
		c.observers.StateChanged(st, reason)
	}
	if persistErr != nil {
		c.observers.PersistFailed(persistErr)
	}
	return st, persistErr
}

// Tick runs the overheat guard and, in automatic mode with a trusted clock and no
// cooldown in progress, the schedule. Nothing is written if nothing changed.
func (c *Controller) Tick(ctx context.Context, now time.Time) error {
	_, err := c.transition(ctx, now, false, func(st *models.ValveState, now time.Time, trusted bool) (string, error) {
		result := c.guard.Check(st, now, trusted)
		reason := result.String()
		if result == guardReleased && st.Mode == models.ModeManual && st.IntendedState {
			energize(st, now)
		}
		if st.Mode == models.ModeAutomatic && trusted && !st.OverheatProtected {
			before := *st
			applyDesired(st, Desired(models.TimeOfDayAt(now), st.Schedule), now)
			if reason == "" && !before.Equal(*st) {
				reason = ReasonScheduleEval
			}
		}
		return reason, nil
	})
	return err
}

// Toggle flips the valve in manual mode.
func (c *Controller) Toggle(ctx context.Context) (models.Status, error) {
	return c.transition(ctx, c.clock.Now(), true, func(st *models.ValveState, now time.Time, _ bool) (string, error) {
		if st.Mode != models.ModeManual {
			return "", ErrModeConflict
		}
		if st.OverheatProtected {
			return "", ErrOverheatCooldown
		}
		if st.Energized {
			deenergize(st)
			st.IntendedState = false
		} else {
			energize(st, now)
			st.IntendedState = true
		}
		return ReasonToggle, nil
	})
}

// SetMode switches between manual and automatic control.
func (c *Controller) SetMode(ctx context.Context, mode models.Mode) (models.Status, error) {
	return c.transition(ctx, c.clock.Now(), true, func(st *models.ValveState, now time.Time, trusted bool) (string, error) {
		switch mode {
		case models.ModeManual:
			st.Mode = models.ModeManual
			if st.IntendedState && !st.OverheatProtected && !st.Energized {
				energize(st, now)
			}
		case models.ModeAutomatic:
			if !trusted {
				return "", ErrClockNotSet
			}
			if st.Schedule.Start == st.Schedule.Stop {
				return "", ErrInvalidSchedule
			}
			st.Mode = models.ModeAutomatic
		default:
			return "", fmt.Errorf("%w: mode %q", ErrInvalidRange, mode)
		}
		return ReasonMode, nil
	})
}

// SetSchedule replaces the daily on-window. Windows spanning midnight are accepted;
// identical start and stop are not.
func (c *Controller) SetSchedule(ctx context.Context, sched models.Schedule) (models.Schedule, error) {
	if !sched.Start.Valid() || !sched.Stop.Valid() {
		return models.Schedule{}, fmt.Errorf("%w: schedule %02d:%02d-%02d:%02d",
			ErrInvalidRange, sched.Start.Hour, sched.Start.Minute, sched.Stop.Hour, sched.Stop.Minute)
	}
	if sched.Start == sched.Stop {
		return models.Schedule{}, fmt.Errorf("%w: start equals stop (%s)", ErrInvalidRange, sched.Start)
	}
	st, err := c.transition(ctx, c.clock.Now(), true, func(st *models.ValveState, _ time.Time, _ bool) (string, error) {
		st.Schedule = sched
		return ReasonSchedule, nil
	})
	if err != nil && !IsPersistence(err) {
		return models.Schedule{}, err
	}
	return st.Schedule(), err
}

// Status returns a snapshot of the valve. It has no side effects.
func (c *Controller) Status(ctx context.Context) (models.Status, error) {
	if err := c.acquire(ctx); err != nil {
		return models.Status{}, err
	}
	defer c.sem.Release(1)
	return c.statusLocked(c.clock.Now(), c.clock.Trusted()), nil
}

// Erase deletes the durable record and puts the controller back to factory defaults under
// the state lock, so no later tick can write the old state back. The relay is released.
func (c *Controller) Erase(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.sem.Release(1)

	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.PersistTimeout)
	defer cancel()
	if err := c.repo.Erase(ectx); err != nil {
		return fmt.Errorf("%w: erase: %v", ErrPersistenceFailed, err)
	}

	now, trusted := c.clock.Now(), c.clock.Trusted()
	prev := c.state
	c.state = models.DefaultValveState()
	c.guard.Track(prev, c.state, trusted)
	if prev.Energized {
		c.actuate(false)
	}
	c.log.Warnw("valve_factory_reset", "from", prev.Phase())
	c.observers.StateChanged(c.statusLocked(now, trusted), ReasonFactoryReset)
	return nil
}

// Run ticks the controller until ctx is canceled.
func (c *Controller) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	c.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.runOnce(ctx)
		}
	}
}

func (c *Controller) runOnce(ctx context.Context) {
	if err := c.Tick(ctx, c.clock.Now()); err != nil && ctx.Err() == nil {
		c.log.Warnw("valve_tick_failed", "err", err)
	}
}

func (c *Controller) acquire(ctx context.Context) error {
	lctx, cancel := context.WithTimeout(ctx, c.cfg.LockTimeout)
	defer cancel()
	if err := c.sem.Acquire(lctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: not acquired within %s", ErrLockBusy, c.cfg.LockTimeout)
	}
	return nil
}

// persist writes st with a bounded wait. It is detached from ctx cancellation: once the
// state has changed in memory the write is attempted even if the caller went away.
func (c *Controller) persist(ctx context.Context, st models.ValveState) error {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.PersistTimeout)
	defer cancel()

	err := c.repo.Save(pctx, st)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrBusy) || errors.Is(pctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", ErrPersistenceBusy, err)
	} else {
		err = fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	c.log.Errorw("persist_failed", "err", err, "phase", st.Phase())
	return err
}

func (c *Controller) actuate(on bool) {
	if c.relay == nil {
		return
	}
	if err := c.relay.Set(on); err != nil {
		c.log.Errorw("relay_set_failed", "on", on, "err", err)
		c.observers.RelayFailed(err)
	}
}

func (c *Controller) statusLocked(now time.Time, trusted bool) models.Status {
	s := c.state
	st := models.Status{
		Energized:                s.Energized,
		IntendedState:            s.IntendedState,
		Mode:                     s.Mode,
		StartHour:                s.Schedule.Start.Hour,
		StartMinute:              s.Schedule.Start.Minute,
		StopHour:                 s.Schedule.Stop.Hour,
		StopMinute:               s.Schedule.Stop.Minute,
		OverheatProtected:        s.OverheatProtected,
		Phase:                    s.Phase(),
		RunSeconds:               int64(c.guard.RunDuration(s, now, trusted) / time.Second),
		CooldownRemainingSeconds: int64(c.guard.CooldownRemaining(s, now, trusted) / time.Second),
		ClockTrusted:             trusted,
		Now:                      now,
		BootID:                   c.cfg.BootID,
	}
	if !s.OnSince.IsZero() {
		t := s.OnSince
		st.OnSince = &t
	}
	if !s.OffSince.IsZero() {
		t := s.OffSince
		st.OffSince = &t
	}
	return st
}

func energize(st *models.ValveState, now time.Time) {
	st.Energized = true
	st.OnSince = now
}

func deenergize(st *models.ValveState) {
	st.Energized = false
	st.OnSince = time.Time{}
}

// applyDesired makes the schedule decision the intended and actual state.
func applyDesired(st *models.ValveState, desired bool, now time.Time) {
	st.IntendedState = desired
	switch {
	case desired && !st.Energized:
		energize(st, now)
	case !desired && st.Energized:
		deenergize(st)
	}
}
