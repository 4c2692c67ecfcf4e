package repository

import (
	"database/sql"
	"fmt"
	"time"

	"irrigation_valve/internal/models"
)

// initializedMarker distinguishes a written record from an empty or foreign row.
const initializedMarker = 0xA5

// Persisted timestamps outside [minPlausible, maxPlausible) are treated as absent.
var (
	minPlausible = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxPlausible = time.Date(2101, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// stateRecord is the physical row layout. Timestamps are unix seconds, 0 = none.
type stateRecord struct {
	Initialized       int
	Energized         bool
	IsManual          bool
	StartHour         int
	StartMinute       int
	StopHour          int
	StopMinute        int
	OverheatProtected bool
	Intended          sql.NullBool
	OnSince           int64
	OffSince          int64
}

// PlausibleTimestamp reports whether t lies in the sane epoch range (years 2020-2100).
func PlausibleTimestamp(t time.Time) bool {
	return !t.Before(minPlausible) && t.Before(maxPlausible)
}

func encodeTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func decodeTimestamp(sec int64) (time.Time, bool) {
	if sec == 0 {
		return time.Time{}, true
	}
	t := time.Unix(sec, 0).UTC()
	if !PlausibleTimestamp(t) {
		return time.Time{}, false
	}
	return t, true
}

func encodeState(s models.ValveState) stateRecord {
	return stateRecord{
		Initialized:       initializedMarker,
		Energized:         s.Energized,
		IsManual:          s.Mode != models.ModeAutomatic,
		StartHour:         s.Schedule.Start.Hour,
		StartMinute:       s.Schedule.Start.Minute,
		StopHour:          s.Schedule.Stop.Hour,
		StopMinute:        s.Schedule.Stop.Minute,
		OverheatProtected: s.OverheatProtected,
		Intended:          sql.NullBool{Bool: s.IntendedState, Valid: true},
		OnSince:           encodeTimestamp(s.OnSince),
		OffSince:          encodeTimestamp(s.OffSince),
	}
}

// decodeState rebuilds a ValveState and repairs anything that would break the
// controller invariants or feed a bogus instant into the overheat timers.
func decodeState(r stateRecord) Snapshot {
	if r.Initialized != initializedMarker {
		return Snapshot{State: models.DefaultValveState()}
	}

	var repairs []string
	st := models.ValveState{
		Energized:         r.Energized,
		Mode:              models.ModeManual,
		OverheatProtected: r.OverheatProtected,
		Schedule: models.Schedule{
			Start: models.TimeOfDay{Hour: r.StartHour, Minute: r.StartMinute},
			Stop:  models.TimeOfDay{Hour: r.StopHour, Minute: r.StopMinute},
		},
	}
	if !r.IsManual {
		st.Mode = models.ModeAutomatic
	}

	if !st.Schedule.Valid() {
		repairs = append(repairs, fmt.Sprintf("schedule %s replaced by default %s", st.Schedule, models.DefaultSchedule))
		st.Schedule = models.DefaultSchedule
	}

	if st.Energized && st.OverheatProtected {
		repairs = append(repairs, "energized and overheat protected at once; keeping cooldown")
		st.Energized = false
	}

	if r.Intended.Valid {
		st.IntendedState = r.Intended.Bool
	} else {
		st.IntendedState = st.Energized || st.OverheatProtected
	}

	onSince, ok := decodeTimestamp(r.OnSince)
	if !ok {
		repairs = append(repairs, fmt.Sprintf("on_since %d outside plausible range", r.OnSince))
	}
	offSince, ok := decodeTimestamp(r.OffSince)
	if !ok {
		repairs = append(repairs, fmt.Sprintf("off_since %d outside plausible range", r.OffSince))
	}

	if st.Energized {
		st.OnSince = onSince
	} else if !onSince.IsZero() {
		repairs = append(repairs, "on_since dropped while de-energized")
	}
	if st.OverheatProtected {
		st.OffSince = offSince
	} else if !offSince.IsZero() {
		repairs = append(repairs, "off_since dropped outside cooldown")
	}

	return Snapshot{State: st, Initialized: true, Repairs: repairs}
}
