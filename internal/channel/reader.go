package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
)

// reader decodes messages on its own goroutine so Receive can honor ctx.
type reader[R any] struct {
	items chan R
	done  chan struct{}
	// err is written before items is closed.
	err error
}

func startReader[R any](decode func(*R) error, done chan struct{}) *reader[R] {
	r := &reader[R]{items: make(chan R, 16), done: done}
	go r.run(decode)
	return r
}

func (r *reader[R]) run(decode func(*R) error) {
	defer close(r.items)
	for {
		var v R
		if err := decode(&v); err != nil {
			r.err = closedError(err)
			return
		}
		select {
		case r.items <- v:
		case <-r.done:
			r.err = ErrClosed
			return
		}
	}
}

func (r *reader[R]) receive(ctx context.Context) (R, error) {
	var zero R
	select {
	case v, ok := <-r.items:
		if !ok {
			return zero, r.err
		}
		return v, nil
	case <-r.done:
		select {
		case v, ok := <-r.items:
			if ok {
				return v, nil
			}
		default:
		}
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func closedError(err error) error {
	switch {
	case errors.Is(err, ErrClosed):
		return err
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed), errors.Is(err, os.ErrClosed):
		return ErrClosed
	default:
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
}
