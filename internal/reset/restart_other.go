//go:build !unix

package reset

import "errors"

// ExecRestarter is not available on this platform.
type ExecRestarter struct {
	BeforeExec func()
}

func (r ExecRestarter) Restart() error {
	return errors.New("reset: restart not supported on this platform")
}
