// ABOUTME: Unix-specific process group management for hook commands
// ABOUTME: Sets Setpgid, kills process groups on timeout, extracts exit signals

//go:build unix

package hooks

import (
	"os/exec"
	"syscall"
)

// setProcGroup configures the command to run in its own process group so
// shell-spawned descendants die with it.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup kills the entire process group of the command.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process != nil {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	return nil
}

// exitSignal returns the name of the signal that terminated the process,
// or empty if it exited normally.
func exitSignal(err *exec.ExitError) string {
	ws, ok := err.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return ""
	}
	return ws.Signal().String()
}
