// Package gpio drives the valve relay and reads the factory-reset button.
// The real implementation uses the Linux GPIO character device.
// The simulated and fake implementations run without hardware.
package gpio

// Relay switches the valve solenoid.
type Relay interface {
	// Set energizes (true) or releases (false) the relay.
	Set(on bool) error

	// Close releases the line, leaving the relay off.
	Close() error
}

// Button reads a momentary push button.
type Button interface {
	// Pressed returns the logical button state, already corrected for pull-up wiring.
	Pressed() (bool, error)

	Close() error
}

// Default pin assignment (BCM numbering).
const (
	DefaultChip     = "gpiochip0"
	DefaultRelayPin = 17
	DefaultResetPin = 27
)

const consumer = "valved"

// Pull is the bias applied to a line left as an input.
type Pull int

const (
	PullDown Pull = iota
	PullUp
)

func (p Pull) String() string {
	if p == PullUp {
		return "pull-up"
	}
	return "pull-down"
}

// ReleasePull is the bias that holds a released relay line at its off level. An
// active-low board switches on at a low level, so its line is pulled up.
func ReleasePull(activeLow bool) Pull {
	if activeLow {
		return PullUp
	}
	return PullDown
}
