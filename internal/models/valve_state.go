package models

import (
	"fmt"
	"time"
)

// Mode selects who decides the intended valve state.
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeAutomatic Mode = "automatic"
)

// ParseMode accepts the wire names of a mode, case-sensitive.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeManual, ModeAutomatic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Valid reports whether the hour is in 0..23 and the minute in 0..59.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// MinuteOfDay returns 0..1439 for a valid TimeOfDay.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayAt extracts the hour and minute of ts in its own location.
func TimeOfDayAt(ts time.Time) TimeOfDay {
	return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}
}

// Schedule is a daily on-window. Start > Stop spans midnight.
type Schedule struct {
	Start TimeOfDay `json:"start"`
	Stop  TimeOfDay `json:"stop"`
}

// DefaultSchedule is used on first run and whenever a stored schedule is unusable.
var DefaultSchedule = Schedule{
	Start: TimeOfDay{Hour: 8},
	Stop:  TimeOfDay{Hour: 18},
}

// Valid reports whether both ends are in range and the window is not zero-length.
func (s Schedule) Valid() bool {
	return s.Start.Valid() && s.Stop.Valid() && s.Start != s.Stop
}

// Wraps reports whether the window crosses midnight.
func (s Schedule) Wraps() bool {
	return s.Start.MinuteOfDay() > s.Stop.MinuteOfDay()
}

func (s Schedule) String() string {
	return s.Start.String() + "-" + s.Stop.String()
}

// ValveState is the authoritative record owned by the valve controller.
// Zero OnSince/OffSince mean "absent".
type ValveState struct {
	Energized         bool
	IntendedState     bool
	Mode              Mode
	Schedule          Schedule
	OverheatProtected bool
	OnSince           time.Time
	OffSince          time.Time
}

// DefaultValveState is the first-run state: manual, off, 08:00-18:00.
func DefaultValveState() ValveState {
	return ValveState{
		Mode:     ModeManual,
		Schedule: DefaultSchedule,
	}
}

// Equal compares two states field by field, timestamps by instant.
func (s ValveState) Equal(o ValveState) bool {
	return s.Energized == o.Energized &&
		s.IntendedState == o.IntendedState &&
		s.Mode == o.Mode &&
		s.Schedule == o.Schedule &&
		s.OverheatProtected == o.OverheatProtected &&
		s.OnSince.Equal(o.OnSince) &&
		s.OffSince.Equal(o.OffSince)
}

// CheckInvariants returns the first violated state invariant, if any.
func (s ValveState) CheckInvariants() error {
	if s.Mode != ModeManual && s.Mode != ModeAutomatic {
		return fmt.Errorf("invalid mode %q", s.Mode)
	}
	if s.Energized && s.OverheatProtected {
		return fmt.Errorf("energized while overheat protected")
	}
	if s.Mode == ModeAutomatic && s.Schedule.Start == s.Schedule.Stop {
		return fmt.Errorf("automatic mode with zero-length schedule %s", s.Schedule)
	}
	return nil
}

// Phase names the externally visible state machine position.
type Phase string

const (
	PhaseOff         Phase = "off"
	PhaseOn          Phase = "on"
	PhaseCoolingDown Phase = "cooling_down"
)

// Phase derives Off/On/CoolingDown from the flags.
func (s ValveState) Phase() Phase {
	switch {
	case s.OverheatProtected:
		return PhaseCoolingDown
	case s.Energized:
		return PhaseOn
	default:
		return PhaseOff
	}
}
