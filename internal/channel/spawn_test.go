package channel

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textchecker/internal/contracts"
)

func spawnShell(t *testing.T, script string) (HostConn, *process) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	conn, err := Spawn(testContext(t), JSON(), "sh", "-c", script)
	require.NoError(t, err)

	stream, ok := conn.(*Stream[contracts.Command, contracts.Response])
	require.True(t, ok)
	p, ok := stream.closers[1].(*process)
	require.True(t, ok)
	return conn, p
}

func waitExited(t *testing.T, p *process) {
	t.Helper()
	select {
	case <-p.exited:
	case <-time.After(3 * time.Second):
		t.Fatal("worker process was not reaped")
	}
}

func TestSpawnReapsWorkerThatExits(t *testing.T) {
	conn, p := spawnShell(t, "exit 3")

	_, err := conn.Receive(testContext(t))
	assert.ErrorIs(t, err, ErrClosed)

	waitExited(t, p)
	var exitErr *exec.ExitError
	require.ErrorAs(t, p.err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())

	assert.NoError(t, conn.Close())
}

func TestSpawnCloseWaitsForExit(t *testing.T) {
	conn, p := spawnShell(t, "cat >/dev/null")

	select {
	case <-p.exited:
		t.Fatal("worker exited before its stdin was closed")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, conn.Close())
	waitExited(t, p)
	assert.NoError(t, p.err)
}
