package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrModeConflict, "ModeConflict"},
		{fmt.Errorf("wrapped: %w", ErrOverheatCooldown), "OverheatCooldown"},
		{ErrClockNotSet, "ClockNotSet"},
		{ErrInvalidSchedule, "InvalidSchedule"},
		{fmt.Errorf("%w: minute 61", ErrInvalidRange), "InvalidRange"},
		{fmt.Errorf("%w: disk full", ErrPersistenceFailed), "PersistenceFailed"},
		{ErrPersistenceBusy, "PersistenceBusy"},
		{fmt.Errorf("%w: not acquired within 2s", ErrLockBusy), "PersistenceBusy"},
		{errors.New("something else"), ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsPersistence(t *testing.T) {
	if !IsPersistence(fmt.Errorf("%w: x", ErrPersistenceBusy)) || !IsPersistence(ErrPersistenceFailed) {
		t.Fatalf("persistence errors not recognized")
	}
	if IsPersistence(ErrModeConflict) {
		t.Fatalf("domain error classified as persistence")
	}
}

func TestIsPersistence_LockBusyWasNotApplied(t *testing.T) {
	err := fmt.Errorf("%w: not acquired within 2s", ErrLockBusy)
	if IsPersistence(err) {
		t.Fatalf("lock timeout classified as an applied change")
	}
	if !errors.Is(err, ErrPersistenceBusy) {
		t.Fatalf("lock timeout must still be a PersistenceBusy kind")
	}
}
