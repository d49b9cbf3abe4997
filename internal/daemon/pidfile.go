package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PIDFile records the serve process started by a run so that it can be found again
// from another invocation. The file holds "<pid> <port>".
type PIDFile struct {
	Path string
}

// Record is the content of a PID file.
type Record struct {
	PID  int
	Port int
}

// NewPIDFile creates a PIDFile manager for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Write records pid as serving on port, creating the parent directory if needed.
func (p *PIDFile) Write(pid, port int) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	line := strconv.Itoa(pid) + " " + strconv.Itoa(port) + "\n"
	return os.WriteFile(p.Path, []byte(line), 0o644)
}

// Read reads the record from the file. A legacy file holding only a PID yields Port 0.
func (p *PIDFile) Read() (Record, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return Record{}, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 || len(fields) > 2 {
		return Record{}, fmt.Errorf("invalid PID file content: %q", strings.TrimSpace(string(data)))
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("invalid PID file content: %w", err)
	}
	rec := Record{PID: pid}
	if len(fields) == 2 {
		port, err := strconv.Atoi(fields[1])
		if err != nil {
			return Record{}, fmt.Errorf("invalid PID file content: %w", err)
		}
		rec.Port = port
	}
	return rec, nil
}

// Remove deletes the PID file.
func (p *PIDFile) Remove() error {
	return os.Remove(p.Path)
}
