package service

import (
	"testing"
	"time"

	"irrigation_valve/internal/models"
)

var t0 = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

func TestOverheatGuard_TripAndRelease(t *testing.T) {
	g := NewOverheatGuard(0, t0)
	st := models.ValveState{Mode: models.ModeManual, Energized: true, IntendedState: true, OnSince: t0}

	if r := g.Check(&st, t0.Add(MaxRunDuration-time.Second), true); r != guardIdle {
		t.Fatalf("expected idle before limit, got %v", r)
	}
	if r := g.Check(&st, t0.Add(MaxRunDuration), true); r != guardTripped {
		t.Fatalf("expected trip at limit, got %v", r)
	}
	if st.Energized || !st.OverheatProtected || !st.OffSince.Equal(t0.Add(MaxRunDuration)) || !st.OnSince.IsZero() {
		t.Fatalf("unexpected state after trip: %+v", st)
	}
	if !st.IntendedState {
		t.Fatalf("trip must not change the intended state")
	}

	if r := g.Check(&st, t0.Add(MaxRunDuration+CooldownDuration-time.Second), true); r != guardIdle {
		t.Fatalf("expected idle during cooldown, got %v", r)
	}
	if r := g.Check(&st, t0.Add(MaxRunDuration+CooldownDuration), true); r != guardReleased {
		t.Fatalf("expected release after cooldown, got %v", r)
	}
	if st.OverheatProtected || !st.OffSince.IsZero() || st.Energized {
		t.Fatalf("unexpected state after release: %+v", st)
	}
}

func TestOverheatGuard_MissingTimestampRearms(t *testing.T) {
	g := NewOverheatGuard(0, t0)

	st := models.ValveState{Energized: true}
	if r := g.Check(&st, t0, true); r != guardRearmed {
		t.Fatalf("expected rearm, got %v", r)
	}
	if !st.Energized || !st.OnSince.Equal(t0) {
		t.Fatalf("expected valve kept on with fresh on_since, got %+v", st)
	}

	cool := models.ValveState{OverheatProtected: true}
	if r := g.Check(&cool, t0, true); r != guardRearmed {
		t.Fatalf("expected cooldown rearm, got %v", r)
	}
	if !cool.OverheatProtected || !cool.OffSince.Equal(t0) {
		t.Fatalf("expected cooldown restarted from now, got %+v", cool)
	}
}

func TestOverheatGuard_FutureTimestampRearms(t *testing.T) {
	g := NewOverheatGuard(0, t0)
	st := models.ValveState{Energized: true, OnSince: t0.Add(time.Hour)}
	if r := g.Check(&st, t0, true); r != guardRearmed {
		t.Fatalf("expected rearm for on_since in the future, got %v", r)
	}
	if !st.OnSince.Equal(t0) {
		t.Fatalf("on_since = %v, want %v", st.OnSince, t0)
	}
}

func TestOverheatGuard_GraceOnlyWhileClockUntrusted(t *testing.T) {
	g := NewOverheatGuard(30*time.Second, t0)
	onSince := t0.Add(-MaxRunDuration)

	st := models.ValveState{Energized: true, OnSince: onSince}
	if r := g.Check(&st, t0.Add(10*time.Second), false); r != guardIdle {
		t.Fatalf("expected grace to hold back the trip, got %v", r)
	}
	if r := g.Check(&st, t0.Add(10*time.Second), true); r != guardTripped {
		t.Fatalf("expected trip once the clock is trusted, got %v", r)
	}

	st = models.ValveState{Energized: true, OnSince: onSince}
	if r := g.Check(&st, t0.Add(30*time.Second), false); r != guardTripped {
		t.Fatalf("expected trip after grace even with untrusted clock, got %v", r)
	}
}

func TestOverheatGuard_GraceNeverDelaysCooldown(t *testing.T) {
	g := NewOverheatGuard(time.Hour, t0)
	st := models.ValveState{OverheatProtected: true, OffSince: t0.Add(-CooldownDuration)}
	if r := g.Check(&st, t0, false); r != guardReleased {
		t.Fatalf("expected release during grace, got %v", r)
	}
}

func TestOverheatGuard_Durations(t *testing.T) {
	g := NewOverheatGuard(0, t0)
	on := models.ValveState{Energized: true, OnSince: t0}
	if d := g.RunDuration(on, t0.Add(42*time.Second), true); d != 42*time.Second {
		t.Fatalf("RunDuration = %v", d)
	}
	cool := models.ValveState{OverheatProtected: true, OffSince: t0}
	if d := g.CooldownRemaining(cool, t0.Add(20*time.Second), true); d != 40*time.Second {
		t.Fatalf("CooldownRemaining = %v", d)
	}
	if d := g.CooldownRemaining(cool, t0.Add(2*time.Minute), true); d != 0 {
		t.Fatalf("CooldownRemaining after expiry = %v", d)
	}
}

func TestOverheatGuard_ImplausibleTimestampRearmsOnTrustedClock(t *testing.T) {
	g := NewOverheatGuard(0, t0)
	st := models.ValveState{Energized: true, OnSince: time.Unix(0, 0).UTC()}
	if r := g.Check(&st, t0, true); r != guardRearmed {
		t.Fatalf("expected rearm for an implausible on_since, got %v", r)
	}
	if !st.Energized || !st.OnSince.Equal(t0) {
		t.Fatalf("expected valve kept on with fresh on_since, got %+v", st)
	}
}

func TestOverheatGuard_UntrustedStampIsRebasedOnSync(t *testing.T) {
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewOverheatGuard(0, epoch)

	prev := models.ValveState{Mode: models.ModeManual}
	st := prev
	st.Energized, st.OnSince = true, epoch
	g.Track(prev, st, false)

	if r := g.Check(&st, epoch.Add(time.Minute), false); r != guardIdle {
		t.Fatalf("expected idle while the untrusted clock advances, got %v", r)
	}
	if r := g.Check(&st, t0, true); r != guardRearmed {
		t.Fatalf("expected rebase on first trusted check, got %v", r)
	}
	if want := t0.Add(-time.Minute); !st.OnSince.Equal(want) {
		t.Fatalf("on_since = %v, want %v (elapsed run time kept)", st.OnSince, want)
	}
	if r := g.Check(&st, t0.Add(MaxRunDuration-time.Minute-time.Second), true); r != guardIdle {
		t.Fatalf("expected idle before the limit, got %v", r)
	}
	if r := g.Check(&st, t0.Add(MaxRunDuration-time.Minute), true); r != guardTripped {
		t.Fatalf("expected trip once the combined run reaches the limit, got %v", r)
	}
}

func TestOverheatGuard_UntrustedClockStillEnforcesLimit(t *testing.T) {
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewOverheatGuard(0, epoch)
	st := models.ValveState{Energized: true, OnSince: epoch}
	if r := g.Check(&st, epoch.Add(MaxRunDuration), false); r != guardTripped {
		t.Fatalf("expected trip on an unsynchronized clock, got %v", r)
	}
}
