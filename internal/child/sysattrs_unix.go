//go:build !windows

package child

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr sets process-group isolation and, when requested,
// drops privileges to the configured uid/gid before exec.
func configureSysProcAttr(cmd *exec.Cmd, a SpawnAttrs) {
	attr := &syscall.SysProcAttr{Setpgid: true}
	if a.UID != nil || a.GID != nil {
		cred := &syscall.Credential{}
		if a.UID != nil {
			cred.Uid = uint32(*a.UID)
		}
		if a.GID != nil {
			cred.Gid = uint32(*a.GID)
		}
		attr.Credential = cred
	}
	cmd.SysProcAttr = attr
}

// applyUmask installs the process-wide umask for the duration of a spawn and
// returns a closure that restores the previous value. The umask is global to
// the OS process, so callers must hold a lock across Start() — Spawn does.
func applyUmask(mask int) func() {
	if mask < 0 {
		return func() {}
	}
	prev := syscall.Umask(mask)
	return func() { syscall.Umask(prev) }
}
