//go:build !windows

package ports

import "syscall"

func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
