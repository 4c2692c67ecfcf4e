package service

import (
	"testing"

	"irrigation_valve/internal/models"
)

func tod(h, m int) models.TimeOfDay { return models.TimeOfDay{Hour: h, Minute: m} }

func TestDesired_Examples(t *testing.T) {
	day := models.Schedule{Start: tod(8, 0), Stop: tod(18, 0)}
	night := models.Schedule{Start: tod(22, 0), Stop: tod(6, 0)}

	cases := []struct {
		name  string
		sched models.Schedule
		now   models.TimeOfDay
		want  bool
	}{
		{"day_before_start", day, tod(7, 59), false},
		{"day_at_start_inclusive", day, tod(8, 0), true},
		{"day_midday", day, tod(12, 30), true},
		{"day_at_stop_exclusive", day, tod(18, 0), false},
		{"night_late_evening", night, tod(23, 0), true},
		{"night_after_midnight", night, tod(2, 0), true},
		{"night_midday", night, tod(12, 0), false},
		{"night_at_start", night, tod(22, 0), true},
		{"night_at_stop", night, tod(6, 0), false},
		{"night_midnight", night, tod(0, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Desired(tc.now, tc.sched); got != tc.want {
				t.Fatalf("Desired(%s, %s) = %v, want %v", tc.now, tc.sched, got, tc.want)
			}
		})
	}
}

// Every valid schedule splits the day into exactly its window and the complement.
func TestDesired_PartitionsDay(t *testing.T) {
	for _, sched := range []models.Schedule{
		{Start: tod(8, 0), Stop: tod(18, 0)},
		{Start: tod(22, 0), Stop: tod(6, 0)},
		{Start: tod(0, 0), Stop: tod(23, 59)},
		{Start: tod(23, 59), Stop: tod(0, 0)},
		{Start: tod(12, 1), Stop: tod(12, 0)},
		{Start: tod(0, 1), Stop: tod(0, 2)},
	} {
		start, stop := sched.Start.MinuteOfDay(), sched.Stop.MinuteOfDay()
		wantOn := (stop - start + models.MinutesPerDay) % models.MinutesPerDay

		on := 0
		for m := 0; m < models.MinutesPerDay; m++ {
			now := tod(m/60, m%60)
			inWindow := (m-start+models.MinutesPerDay)%models.MinutesPerDay < wantOn
			got := Desired(now, sched)
			if got != inWindow {
				t.Fatalf("%s at %s: got %v, want %v", sched, now, got, inWindow)
			}
			if got {
				on++
			}
		}
		if on != wantOn {
			t.Fatalf("%s: %d minutes on, want %d", sched, on, wantOn)
		}
	}
}
