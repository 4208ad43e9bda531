package channel

import (
	"context"
	"errors"
	"io"
	"sync"

	"textchecker/internal/contracts"
)

// Stream is a channel end over a byte stream, such as the stdio of a worker
// process. Messages are framed by the codec itself.
type Stream[S, R any] struct {
	writeMu sync.Mutex
	enc     Encoder
	in      *reader[R]
	closers []io.Closer

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
}

// NewStream starts decoding R values from r and encodes S values to w.
// Close closes every closer in order.
func NewStream[S, R any](r io.Reader, w io.Writer, codec Codec, closers ...io.Closer) *Stream[S, R] {
	done := make(chan struct{})
	dec := codec.NewDecoder(r)
	return &Stream[S, R]{
		enc:     codec.NewEncoder(w),
		in:      startReader(func(v *R) error { return dec.Decode(v) }, done),
		closers: closers,
		done:    done,
	}
}

// NewHostStream returns the host end of a stream.
func NewHostStream(r io.Reader, w io.Writer, codec Codec, closers ...io.Closer) HostConn {
	return NewStream[contracts.Command, contracts.Response](r, w, codec, closers...)
}

// NewWorkerStream returns the worker end of a stream.
func NewWorkerStream(r io.Reader, w io.Writer, codec Codec, closers ...io.Closer) WorkerConn {
	return NewStream[contracts.Response, contracts.Command](r, w, codec, closers...)
}

func (s *Stream[S, R]) Send(ctx context.Context, msg S) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(msg); err != nil {
		return closedError(err)
	}
	return nil
}

func (s *Stream[S, R]) Receive(ctx context.Context) (R, error) {
	return s.in.receive(ctx)
}

func (s *Stream[S, R]) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		var errs []error
		for _, c := range s.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
