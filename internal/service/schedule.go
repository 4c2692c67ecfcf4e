package service

import "irrigation_valve/internal/models"

// Desired reports whether the valve should be on at time-of-day now under sched.
// Start is inclusive, stop exclusive. A window with start > stop spans midnight.
// sched must satisfy Schedule.Valid.
func Desired(now models.TimeOfDay, sched models.Schedule) bool {
	m := now.MinuteOfDay()
	start := sched.Start.MinuteOfDay()
	stop := sched.Stop.MinuteOfDay()
	if start < stop {
		return start <= m && m < stop
	}
	return m >= start || m < stop
}
