//go:build linux

package clock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// timeError is the adjtimex return value while the clock is unsynchronized.
const timeError = 5

// kernelSynced asks the kernel whether NTP (or chrony, or systemd-timesyncd) has
// disciplined the clock.
func kernelSynced() (bool, error) {
	var tx unix.Timex
	state, err := unix.Adjtimex(&tx)
	if err != nil {
		return false, fmt.Errorf("adjtimex: %w", err)
	}
	return state != timeError && tx.Status&unix.STA_UNSYNC == 0, nil
}
