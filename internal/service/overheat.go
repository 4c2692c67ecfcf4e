package service

import (
	"time"

	"irrigation_valve/internal/models"
	"irrigation_valve/internal/repository"
)

// Fixed safety thresholds for continuous operation.
const (
	MaxRunDuration   = 3 * time.Minute
	CooldownDuration = 1 * time.Minute
)

type guardResult int

const (
	guardIdle guardResult = iota
	guardTripped
	guardReleased
	guardRearmed
)

func (r guardResult) String() string {
	switch r {
	case guardTripped:
		return ReasonOverheatTrip
	case guardReleased:
		return ReasonCooldownElapsed
	case guardRearmed:
		return ReasonTimerRearm
	default:
		return ""
	}
}

// OverheatGuard enforces MaxRunDuration of continuous operation followed by a
// CooldownDuration off period.
//
// Timestamps written while the clock is untrusted are provisional. They still time the
// guard, but on the first trusted check they are rebased onto the trusted clock,
// keeping the time already elapsed.
type OverheatGuard struct {
	maxRun    time.Duration
	cooldown  time.Duration
	grace     time.Duration
	startedAt time.Time

	onProvisional  bool
	offProvisional bool
	lastUntrusted  time.Time
}

// NewOverheatGuard returns a guard whose startup grace period runs from startedAt.
func NewOverheatGuard(grace time.Duration, startedAt time.Time) *OverheatGuard {
	return &OverheatGuard{
		maxRun:    MaxRunDuration,
		cooldown:  CooldownDuration,
		grace:     grace,
		startedAt: startedAt,
	}
}

// Check applies at most one guard transition to st.
//
// A missing timestamp, one outside the plausible epoch, or one later than now is never
// used as a duration input: the timer is re-armed from now instead. The startup grace period only holds back the
// running-too-long check, and only while the clock has not been confirmed yet; the
// cooldown check is never suppressed.
func (g *OverheatGuard) Check(st *models.ValveState, now time.Time, trusted bool) guardResult {
	if !trusted {
		g.lastUntrusted = now
	} else if g.rebase(st, now) {
		return guardRearmed
	}

	if st.OverheatProtected {
		if !usableSince(st.OffSince, now, trusted) {
			st.OffSince = now
			return guardRearmed
		}
		if now.Sub(st.OffSince) >= g.cooldown {
			st.OverheatProtected = false
			st.OffSince = time.Time{}
			return guardReleased
		}
		return guardIdle
	}

	if !st.Energized {
		return guardIdle
	}
	if !usableSince(st.OnSince, now, trusted) {
		st.OnSince = now
		return guardRearmed
	}
	if g.inGrace(now, trusted) {
		return guardIdle
	}
	if now.Sub(st.OnSince) >= g.maxRun {
		st.Energized = false
		st.OnSince = time.Time{}
		st.OverheatProtected = true
		st.OffSince = now
		return guardTripped
	}
	return guardIdle
}

// Track records which timestamps of next were written under an untrusted clock. It
// must see every committed transition.
func (g *OverheatGuard) Track(prev, next models.ValveState, trusted bool) {
	if !next.OnSince.Equal(prev.OnSince) {
		g.onProvisional = !trusted && !next.OnSince.IsZero()
	}
	if !next.OffSince.Equal(prev.OffSince) {
		g.offProvisional = !trusted && !next.OffSince.IsZero()
	}
}

// rebase moves provisional timestamps onto the trusted clock.
func (g *OverheatGuard) rebase(st *models.ValveState, now time.Time) bool {
	rebased := false
	if g.onProvisional {
		g.onProvisional = false
		if st.Energized && !st.OnSince.IsZero() {
			st.OnSince = now.Add(-g.elapsedUntrusted(st.OnSince))
			rebased = true
		}
	}
	if g.offProvisional {
		g.offProvisional = false
		if st.OverheatProtected && !st.OffSince.IsZero() {
			st.OffSince = now.Add(-g.elapsedUntrusted(st.OffSince))
			rebased = true
		}
	}
	return rebased
}

// elapsedUntrusted is how long before the last untrusted reading ts was taken.
func (g *OverheatGuard) elapsedUntrusted(ts time.Time) time.Duration {
	if g.lastUntrusted.IsZero() || g.lastUntrusted.Before(ts) {
		return 0
	}
	return g.lastUntrusted.Sub(ts)
}

func (g *OverheatGuard) inGrace(now time.Time, trusted bool) bool {
	return !trusted && now.Sub(g.startedAt) < g.grace
}

// RunDuration is how long the valve has been continuously on, or 0.
func (g *OverheatGuard) RunDuration(st models.ValveState, now time.Time, trusted bool) time.Duration {
	if !st.Energized || !usableSince(st.OnSince, now, trusted) {
		return 0
	}
	return now.Sub(st.OnSince)
}

// CooldownRemaining is how long until the valve may run again, or 0.
func (g *OverheatGuard) CooldownRemaining(st models.ValveState, now time.Time, trusted bool) time.Duration {
	if !st.OverheatProtected {
		return 0
	}
	if !usableSince(st.OffSince, now, trusted) {
		return g.cooldown
	}
	if left := g.cooldown - now.Sub(st.OffSince); left > 0 {
		return left
	}
	return 0
}

// usableSince rejects implausible stamps only against a trusted clock; an untrusted
// clock may legitimately read before the plausible epoch.
func usableSince(ts, now time.Time, trusted bool) bool {
	if ts.IsZero() || ts.After(now) {
		return false
	}
	return !trusted || repository.PlausibleTimestamp(ts)
}
