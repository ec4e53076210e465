//go:build windows

package child

import (
	"os"
	"syscall"
)

// sendSignal on Windows only honours a kill request; anything else is
// approximated as a termination since arbitrary POSIX signals have no
// Windows analogue.
func sendSignal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
