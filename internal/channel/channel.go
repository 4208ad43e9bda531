// Package channel provides the ordered, bidirectional message channels that
// connect a host to a lint worker. The two ends share no memory; everything
// crosses as a Command or a Response.
package channel

import (
	"context"
	"errors"
	"sync"

	"textchecker/internal/contracts"
)

// ErrClosed is returned once either end of a channel has been closed.
var ErrClosed = errors.New("channel closed")

// Conn is one end of a channel. Send and Receive may be called from
// different goroutines, but each of them from one goroutine at a time.
type Conn[S, R any] interface {
	Send(ctx context.Context, msg S) error
	Receive(ctx context.Context) (R, error)
	Close() error
}

// HostConn is the host end: it sends commands and receives responses.
type HostConn = Conn[contracts.Command, contracts.Response]

// WorkerConn is the worker end: it receives commands and sends responses.
type WorkerConn = Conn[contracts.Response, contracts.Command]

// Pipe returns the two ends of an in-process channel. Closing either end
// closes both; messages already buffered are still delivered.
func Pipe(buffer int) (HostConn, WorkerConn) {
	if buffer < 0 {
		buffer = 0
	}
	commands := make(chan contracts.Command, buffer)
	responses := make(chan contracts.Response, buffer)
	shared := &pipeState{done: make(chan struct{})}

	host := &pipeEnd[contracts.Command, contracts.Response]{out: commands, in: responses, state: shared}
	worker := &pipeEnd[contracts.Response, contracts.Command]{out: responses, in: commands, state: shared}
	return host, worker
}

type pipeState struct {
	once sync.Once
	done chan struct{}
}

type pipeEnd[S, R any] struct {
	out   chan<- S
	in    <-chan R
	state *pipeState
}

func (p *pipeEnd[S, R]) Send(ctx context.Context, msg S) error {
	select {
	case <-p.state.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- msg:
		return nil
	case <-p.state.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd[S, R]) Receive(ctx context.Context) (R, error) {
	var zero R
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.state.done:
		select {
		case msg := <-p.in:
			return msg, nil
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (p *pipeEnd[S, R]) Close() error {
	p.state.once.Do(func() {
		close(p.state.done)
	})
	return nil
}
