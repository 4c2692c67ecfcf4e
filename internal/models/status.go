package models

import "time"

// Status is an immutable, flat snapshot of the valve for reporting.
type Status struct {
	Energized                bool       `json:"energized"`
	IntendedState            bool       `json:"intended"`
	Mode                     Mode       `json:"mode"`
	StartHour                int        `json:"start_hour"`
	StartMinute              int        `json:"start_minute"`
	StopHour                 int        `json:"stop_hour"`
	StopMinute               int        `json:"stop_minute"`
	OverheatProtected        bool       `json:"overheat_protected"`
	OnSince                  *time.Time `json:"on_since,omitempty"`
	OffSince                 *time.Time `json:"off_since,omitempty"`
	Phase                    Phase      `json:"phase"`
	RunSeconds               int64      `json:"run_seconds"`
	CooldownRemainingSeconds int64      `json:"cooldown_remaining_seconds"`
	ClockTrusted             bool       `json:"clock_trusted"`
	Now                      time.Time  `json:"now"`
	BootID                   string     `json:"boot_id,omitempty"`
	SignalQuality            *int       `json:"signal_quality,omitempty"`
}

// Schedule rebuilds the schedule carried in the flat snapshot.
func (s Status) Schedule() Schedule {
	return Schedule{
		Start: TimeOfDay{Hour: s.StartHour, Minute: s.StartMinute},
		Stop:  TimeOfDay{Hour: s.StopHour, Minute: s.StopMinute},
	}
}

// ValveLabel is the literal on/off string returned by the toggle endpoint.
func (s Status) ValveLabel() string {
	if s.Energized {
		return "ON"
	}
	return "OFF"
}
