package ports

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	pids []int
	err  error
}

func (f fakeFinder) Owners(context.Context, int) ([]int, error) { return f.pids, f.err }

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestParsePIDs(t *testing.T) {
	assert.Equal(t, []int{101, 202}, parsePIDs("101\n202\n101\nabc\n0\n7\n", 7))
	assert.Nil(t, parsePIDs("", 1))
}

func TestKiller_SignalsEveryOwner(t *testing.T) {
	var signalled []int
	k := &Killer{
		Finder: fakeFinder{pids: []int{11, 12}},
		Signal: func(pid int) error { signalled = append(signalled, pid); return nil },
	}

	pids, err := k.Kill(context.Background(), 3000)

	require.NoError(t, err)
	assert.Equal(t, []int{11, 12}, pids)
	assert.Equal(t, []int{11, 12}, signalled)
}

func TestKiller_NoOwner(t *testing.T) {
	k := &Killer{Finder: fakeFinder{}, Signal: func(int) error { return nil }}

	_, err := k.Kill(context.Background(), 3000)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoOwner))
	assert.Contains(t, err.Error(), "port 3000")
}

func TestKiller_CollectsSignalErrors(t *testing.T) {
	k := &Killer{
		Finder: fakeFinder{pids: []int{11, 12}},
		Signal: func(pid int) error {
			if pid == 12 {
				return errors.New("operation not permitted")
			}
			return nil
		},
	}

	pids, err := k.Kill(context.Background(), 3000)

	assert.Equal(t, []int{11, 12}, pids)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signal pid 12")
}

func TestKiller_FinderError(t *testing.T) {
	k := &Killer{Finder: fakeFinder{err: errors.New("lsof: not found")}}

	_, err := k.Kill(context.Background(), 3000)
	assert.EqualError(t, err, "lsof: not found")
}

func TestInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port

	assert.True(t, InUse(port))
	require.NoError(t, l.Close())
	assert.True(t, WaitFree(context.Background(), port, 2*time.Second))
	assert.False(t, InUse(port))
}

// TestHelperListener is not a real test: the kill test re-executes the test binary
// with it to get a separate process holding a port.
func TestHelperListener(t *testing.T) {
	if os.Getenv("OSEDA_HELPER_LISTEN") == "" {
		t.Skip("helper process")
	}
	addr := "127.0.0.1:" + os.Getenv("OSEDA_HELPER_LISTEN")
	_ = http.ListenAndServe(addr, http.NotFoundHandler())
	os.Exit(0)
}

func TestNewKiller_TerminatesListener(t *testing.T) {
	if _, err := exec.LookPath("lsof"); err != nil {
		t.Skip("lsof not available")
	}
	port := freePort(t)

	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperListener$")
	cmd.Env = append(os.Environ(), "OSEDA_HELPER_LISTEN="+strconv.Itoa(port))
	require.NoError(t, cmd.Start())
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-done
	})

	require.Eventually(t, func() bool { return InUse(port) }, 10*time.Second, 50*time.Millisecond)

	pids, err := NewKiller().Kill(context.Background(), port)
	require.NoError(t, err)
	assert.Contains(t, pids, cmd.Process.Pid, fmt.Sprintf("expected helper pid in %v", pids))

	select {
	case <-done:
		done <- nil
	case <-time.After(10 * time.Second):
		t.Fatal("helper process survived the kill")
	}
	assert.True(t, WaitFree(context.Background(), port, 2*time.Second))
}
