//go:build windows

package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
)

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

func killGroup(cmd *exec.Cmd) error {
	err := cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// stop kills the process; Windows has no graceful termination signal for console children.
func stop(cmd *exec.Cmd, done <-chan error, timeout time.Duration) error {
	err := killGroup(cmd)
	if waitDone(done, timeout) {
		return err
	}
	return errors.Join(err, timeoutError(cmd.Process.Pid, timeout))
}
