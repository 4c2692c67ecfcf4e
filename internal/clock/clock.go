// Package clock provides the controller's Time Source: the current instant and whether
// the wall clock can be trusted for schedule decisions.
package clock

import (
	"sync"
	"time"
)

// Source reports the current instant and whether it has been synchronized.
type Source interface {
	Now() time.Time
	Trusted() bool
}

// minTrustedYear rejects clocks that obviously never synchronized (RTC-less boards boot
// at the epoch or at the image build date).
const minTrustedYear = 2020

// System reads the host wall clock in a fixed location.
type System struct {
	loc          *time.Location
	assumeSynced bool
	synced       func() (bool, error)
}

// NewSystem returns a Source in loc. When assumeSynced is set the kernel sync status is
// ignored and only the year sanity check applies.
func NewSystem(loc *time.Location, assumeSynced bool) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{loc: loc, assumeSynced: assumeSynced, synced: kernelSynced}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Trusted is true once the kernel reports a disciplined clock and the year is sane.
// It goes back to false if the kernel later marks the clock unsynchronized.
func (s *System) Trusted() bool {
	if s.Now().Year() < minTrustedYear {
		return false
	}
	if s.assumeSynced {
		return true
	}
	ok, err := s.synced()
	return err == nil && ok
}

// Fake is a settable Source for tests.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	trusted bool
}

func NewFake(now time.Time, trusted bool) *Fake {
	return &Fake{now: now, trusted: trusted}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Trusted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trusted
}

func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

func (f *Fake) SetTrusted(trusted bool) {
	f.mu.Lock()
	f.trusted = trusted
	f.mu.Unlock()
}
