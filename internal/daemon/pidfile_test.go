package daemon

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "serve.pid")
	pf := NewPIDFile(path)

	require.NoError(t, pf.Write(12345, 3000))

	rec, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, Record{PID: 12345, Port: 3000}, rec)
}

func TestPIDFile_Read_LegacyPIDOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	require.NoError(t, os.WriteFile(path, []byte("42\n"), 0o644))

	rec, err := NewPIDFile(path).Read()
	require.NoError(t, err)
	assert.Equal(t, Record{PID: 42}, rec)
}

func TestPIDFile_Read_MissingFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	_, err := pf.Read()
	assert.Error(t, err)
}

func TestPIDFile_Read_InvalidContent(t *testing.T) {
	for name, body := range map[string]string{
		"not a number": "not-a-number\n",
		"bad port":     "12 port\n",
		"empty":        "\n",
		"too many":     "1 2 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.pid")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := NewPIDFile(path).Read()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid PID file content")
		})
	}
}

func TestPIDFile_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	pf := NewPIDFile(path)
	require.NoError(t, pf.Write(1, 3000))

	require.NoError(t, pf.Remove())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, pf.Remove())
}

func TestPIDFile_IsRunning_CurrentProcess(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))
	require.NoError(t, pf.Write(os.Getpid(), 3000))

	rec, running := pf.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), rec.PID)
	assert.Equal(t, 3000, rec.Port)
}

func TestPIDFile_IsRunning_DeadProcess(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))
	// Use a very high PID that almost certainly doesn't exist.
	require.NoError(t, pf.Write(999999, 3000))

	rec, running := pf.IsRunning()
	assert.Equal(t, 999999, rec.PID)
	assert.False(t, running)
}

func TestPIDFile_IsRunning_NoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	rec, running := pf.IsRunning()
	assert.Equal(t, Record{}, rec)
	assert.False(t, running)
}

func TestPIDFile_Signal(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))
	require.NoError(t, pf.Write(os.Getpid(), 3000))

	// Signal 0 just checks if process exists, doesn't actually send a signal.
	assert.NoError(t, pf.Signal(syscall.Signal(0)))
}

func TestPIDFile_Signal_NoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	err := pf.Signal(syscall.Signal(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read PID file")
}
