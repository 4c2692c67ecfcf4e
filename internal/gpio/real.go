//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealRelay drives the relay line on actual hardware.
type RealRelay struct {
	line      *gpiocdev.Line
	activeLow bool
}

// NewRealRelay requests pin as an output, initially off.
// activeLow inverts the line for relay boards that switch on a low level.
func NewRealRelay(chip string, pin int, activeLow bool) (*RealRelay, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer(consumer),
		gpiocdev.AsOutput(0),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := gpiocdev.RequestLine(chip, pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d on %s: %w", pin, chip, err)
	}
	return &RealRelay{line: line, activeLow: activeLow}, nil
}

func (r *RealRelay) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay pin: %w", err)
	}
	return nil
}

// Close drives the relay off and returns the pin to an input biased to the off level,
// so a stopped daemon never leaves the valve open.
func (r *RealRelay) Close() error {
	var errs []error
	if err := r.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("release relay pin: %w", err))
	}
	if err := r.line.Reconfigure(gpiocdev.AsInput, biasOption(ReleasePull(r.activeLow))); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure relay pin: %w", err))
	}
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close relay pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func biasOption(p Pull) gpiocdev.LineBias {
	if p == PullUp {
		return gpiocdev.WithPullUp
	}
	return gpiocdev.WithPullDown
}

// RealButton reads a button wired between the pin and ground.
type RealButton struct {
	line *gpiocdev.Line
}

// NewRealButton requests pin as an input with the internal pull-up enabled.
func NewRealButton(chip string, pin int) (*RealButton, error) {
	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.WithConsumer(consumer),
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
	)
	if err != nil {
		return nil, fmt.Errorf("request reset pin %d on %s: %w", pin, chip, err)
	}
	return &RealButton{line: line}, nil
}

// Pressed inverts the raw level: the pull-up holds the line high until the button
// shorts it to ground.
func (b *RealButton) Pressed() (bool, error) {
	raw, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read reset pin: %w", err)
	}
	return raw == 0, nil
}

func (b *RealButton) Close() error {
	return b.line.Close()
}
