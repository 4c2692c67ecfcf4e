//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealRelay is not available on non-Linux platforms.
type RealRelay struct{}

// NewRealRelay returns an error on non-Linux platforms.
func NewRealRelay(chip string, pin int, activeLow bool) (*RealRelay, error) {
	return nil, errUnsupported
}

func (r *RealRelay) Set(on bool) error { return errUnsupported }
func (r *RealRelay) Close() error      { return nil }

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chip string, pin int) (*RealButton, error) {
	return nil, errUnsupported
}

func (b *RealButton) Pressed() (bool, error) { return false, errUnsupported }
func (b *RealButton) Close() error           { return nil }
