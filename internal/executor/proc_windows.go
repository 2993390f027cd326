//go:build windows

package executor

import (
	"os"
	"os/exec"
)

// configureProcess keeps the default exec.CommandContext behaviour, which
// kills the child process on cancellation
func configureProcess(cmd *exec.Cmd) {}

// killGroup is a no-op. The child is not started in a job object, so there
// is no group to kill once Wait has returned.
func killGroup(cmd *exec.Cmd) {}

func signalName(ps *os.ProcessState) string {
	return ""
}
