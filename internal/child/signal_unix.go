//go:build !windows

package child

import "syscall"

// sendSignal delivers sig to the process group led by pid, matching the
// Setpgid isolation configureSysProcAttr establishes at spawn time so a
// signal reaches children the spawned shell may have forked.
func sendSignal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	if err := syscall.Kill(-pid, sig); err == nil {
		return nil
	}
	return syscall.Kill(pid, sig)
}
