//go:build windows

package child

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr isolates the child into its own process group.
// Windows has no uid/gid drop equivalent to POSIX Credential; SpawnAttrs.UID
// and SpawnAttrs.GID are ignored on this platform.
func configureSysProcAttr(cmd *exec.Cmd, a SpawnAttrs) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// applyUmask is a no-op on Windows, which has no umask concept.
func applyUmask(mask int) func() {
	return func() {}
}
