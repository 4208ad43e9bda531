package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// exitGrace is how long Close waits for a worker to exit after its stdin is
// closed before killing it.
const exitGrace = 5 * time.Second

// Spawn starts a worker process that speaks the protocol on its stdio and
// returns the host end. The process is reaped as soon as its stdout has been
// drained, whether or not the conn is closed. Closing the conn closes the
// worker's stdin and waits for it to exit.
func Spawn(ctx context.Context, codec Codec, name string, args ...string) (HostConn, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", name, err)
	}

	p := &process{
		cmd:     cmd,
		stdout:  stdout,
		drained: make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go p.reap()
	return NewHostStream(p, stdin, codec, stdin, p), nil
}

// process is the worker's stdout as seen by the stream reader. Wait must not
// run while reads are still in flight, so reap waits for the first read error.
type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	drainOnce sync.Once
	drained   chan struct{}

	exited chan struct{}
	// err is written before exited is closed.
	err error
}

func (p *process) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if err != nil {
		p.markDrained()
	}
	return n, err
}

func (p *process) markDrained() {
	p.drainOnce.Do(func() { close(p.drained) })
}

func (p *process) reap() {
	<-p.drained
	p.err = p.cmd.Wait()
	close(p.exited)
}

// Close waits for the worker to exit, killing it after exitGrace. A non-zero
// exit status is not an error.
func (p *process) Close() error {
	select {
	case <-p.exited:
	case <-time.After(exitGrace):
		_ = p.cmd.Process.Kill()
		_ = p.stdout.Close()
		p.markDrained()
		<-p.exited
	}
	var exitErr *exec.ExitError
	if p.err == nil || errors.As(p.err, &exitErr) || errors.Is(p.err, os.ErrClosed) {
		return nil
	}
	return p.err
}
