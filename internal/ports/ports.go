// Package ports finds and reclaims local TCP ports held by leftover processes.
package ports

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoOwner is returned when no process is listening on the port.
var ErrNoOwner = errors.New("no process listening")

// OwnerFinder finds the processes listening on a TCP port.
type OwnerFinder interface {
	Owners(ctx context.Context, port int) ([]int, error)
}

// LsofFinder finds port owners using lsof (macOS/Linux).
type LsofFinder struct{}

// Owners returns the PIDs listening on port, excluding the current process.
func (LsofFinder) Owners(ctx context.Context, port int) ([]int, error) {
	out, err := exec.CommandContext(ctx, "lsof", "-nP", "-t", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN").Output()
	if err != nil {
		// lsof exits 1 with no output when nothing matches.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(strings.TrimSpace(string(out))) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("lsof tcp:%d: %w", port, err)
	}
	return parsePIDs(string(out), os.Getpid()), nil
}

// parsePIDs reads one PID per line, dropping duplicates, garbage and self.
func parsePIDs(out string, self int) []int {
	var pids []int
	seen := map[int]bool{}
	for field := range strings.FieldsSeq(out) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid <= 0 || pid == self || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}

// Killer reclaims a port by terminating the processes listening on it.
type Killer struct {
	Finder OwnerFinder
	Signal func(pid int) error
}

// NewKiller returns a Killer that uses lsof and SIGTERM.
func NewKiller() *Killer {
	return &Killer{Finder: LsofFinder{}, Signal: terminate}
}

// Kill signals every owner of port and returns the PIDs it signalled.
func (k *Killer) Kill(ctx context.Context, port int) ([]int, error) {
	pids, err := k.Finder.Owners(ctx, port)
	if err != nil {
		return nil, err
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("port %d: %w", port, ErrNoOwner)
	}
	var errs []error
	for _, pid := range pids {
		if err := k.Signal(pid); err != nil {
			errs = append(errs, fmt.Errorf("signal pid %d: %w", pid, err))
		}
	}
	return pids, errors.Join(errs...)
}

// InUse reports whether something accepts TCP connections on localhost:port.
func InUse(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitFree polls until nothing listens on port or timeout passes.
func WaitFree(ctx context.Context, port int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !InUse(port) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return !InUse(port)
		case <-time.After(50 * time.Millisecond):
		}
	}
}
