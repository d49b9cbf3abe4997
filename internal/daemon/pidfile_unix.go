//go:build !windows

package daemon

import (
	"fmt"
	"syscall"
)

// IsRunning checks if the PID file exists and the recorded process is alive.
func (p *PIDFile) IsRunning() (Record, bool) {
	rec, err := p.Read()
	if err != nil {
		return Record{}, false
	}
	// Signal 0 tests if the process exists without sending a signal.
	err = syscall.Kill(rec.PID, 0)
	return rec, err == nil
}

// Signal sends sig to the recorded process group, falling back to the process itself.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	rec, err := p.Read()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	if pgid, err := syscall.Getpgid(rec.PID); err == nil && pgid == rec.PID {
		return syscall.Kill(-pgid, sig)
	}
	return syscall.Kill(rec.PID, sig)
}
