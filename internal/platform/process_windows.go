//go:build windows

package platform

import "os/exec"

// SetProcessGroup is a no-op on Windows.
func SetProcessGroup(cmd *exec.Cmd) {}

// TerminateGroup kills the process; Windows has no SIGTERM equivalent for
// console children.
func TerminateGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// KillGroup kills the process.
func KillGroup(cmd *exec.Cmd) error {
	return TerminateGroup(cmd)
}
