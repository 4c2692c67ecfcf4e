package gpio

import (
	"errors"
	"sync"
)

// FakeRelay records every Set call.
type FakeRelay struct {
	mu sync.Mutex

	// Calls holds every commanded level in order.
	Calls []bool

	// SetError, if set, is returned by Set after recording the call.
	SetError error

	Closed bool
}

func (f *FakeRelay) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, on)
	return f.SetError
}

// On reports the last commanded level.
func (f *FakeRelay) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls) > 0 && f.Calls[len(f.Calls)-1]
}

func (f *FakeRelay) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FakeButton is a test double that returns scripted button states.
type FakeButton struct {
	mu sync.Mutex

	// Samples are consumed one per Pressed call; the last one repeats.
	Samples []bool

	index int

	ReadError error

	Closed bool
}

func NewFakeButton(samples ...bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

func (f *FakeButton) Pressed() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}
	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Hold replaces the script with a single repeating state.
func (f *FakeButton) Hold(pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = []bool{pressed}
	f.index = 0
}

func (f *FakeButton) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
