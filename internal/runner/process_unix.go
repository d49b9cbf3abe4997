//go:build !windows

package runner

import (
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// setProcessGroup starts the child in its own process group so that the
// node processes spawned by npx and serve can be signalled together.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

func killGroup(cmd *exec.Cmd) error {
	return signalGroup(cmd.Process.Pid, syscall.SIGKILL)
}

// stop sends SIGTERM to the process group, waits up to timeout, then escalates to SIGKILL.
func stop(cmd *exec.Cmd, done <-chan error, timeout time.Duration) error {
	pid := cmd.Process.Pid
	termErr := signalGroup(pid, syscall.SIGTERM)
	if waitDone(done, timeout) {
		return termErr
	}
	killErr := signalGroup(pid, syscall.SIGKILL)
	if waitDone(done, timeout) {
		return errors.Join(termErr, killErr)
	}
	return errors.Join(termErr, killErr, timeoutError(pid, timeout))
}
