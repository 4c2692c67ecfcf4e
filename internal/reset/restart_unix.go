//go:build unix

package reset

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ExecRestarter re-executes the current binary with the same arguments and environment.
type ExecRestarter struct {
	// BeforeExec releases resources that must not leak into the new image.
	BeforeExec func()
}

func (r ExecRestarter) Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if r.BeforeExec != nil {
		r.BeforeExec()
	}
	if err := unix.Exec(exe, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", exe, err)
	}
	return nil
}
