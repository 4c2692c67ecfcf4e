package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the valve controller. Callers match them with errors.Is.
var (
	ErrModeConflict      = errors.New("toggle is only available in manual mode")
	ErrOverheatCooldown  = errors.New("valve is cooling down after running too long")
	ErrClockNotSet       = errors.New("clock is not synchronized")
	ErrInvalidSchedule   = errors.New("schedule start and stop are identical")
	ErrInvalidRange      = errors.New("value out of range")
	ErrPersistenceFailed = errors.New("state could not be persisted")
	ErrPersistenceBusy   = errors.New("state store busy")
)

// ErrLockBusy is a PersistenceBusy whose request never ran: the state lock was not
// acquired in time, so nothing was applied.
var ErrLockBusy = fmt.Errorf("%w: state lock held", ErrPersistenceBusy)

var kinds = []struct {
	err  error
	name string
}{
	{ErrModeConflict, "ModeConflict"},
	{ErrOverheatCooldown, "OverheatCooldown"},
	{ErrClockNotSet, "ClockNotSet"},
	{ErrInvalidSchedule, "InvalidSchedule"},
	{ErrInvalidRange, "InvalidRange"},
	{ErrPersistenceBusy, "PersistenceBusy"},
	{ErrPersistenceFailed, "PersistenceFailed"},
}

// Kind names the error kind of err, or "" if err is not one of ours.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

// IsPersistence reports whether err only affects durability: the state change it
// accompanies has already been applied. A lock timeout is not one of them.
func IsPersistence(err error) bool {
	if errors.Is(err, ErrLockBusy) {
		return false
	}
	return errors.Is(err, ErrPersistenceFailed) || errors.Is(err, ErrPersistenceBusy)
}
