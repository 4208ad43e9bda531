// Package client is the host side of the worker protocol. It assigns
// correlation IDs to commands, matches every response to the call waiting for
// it, and surfaces the worker's init metadata.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"textchecker/internal/channel"
	"textchecker/internal/contracts"
	"textchecker/internal/logging"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call. Zero means calls wait until the response,
// cancellation of their context, or loss of the channel.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for protocol diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client correlates commands with responses over one host connection. It is
// safe for concurrent use.
type Client struct {
	conn    channel.HostConn
	logger  *slog.Logger
	timeout time.Duration

	nextID  atomic.Uint64
	sendMu  sync.Mutex
	pending *pendingTable

	initOnce sync.Once
	ready    chan struct{}
	metadata contracts.ScriptMetadata

	closeOnce sync.Once
	done      chan struct{}
}

// New starts reading responses from conn. The client owns conn from now on.
func New(conn channel.HostConn, opts ...Option) *Client {
	c := &Client{
		conn:    conn,
		pending: newPendingTable(),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Component(c.logger, "client")

	go c.readLoop()
	return c
}

// Ready waits for the worker's init response and returns its metadata.
func (c *Client) Ready(ctx context.Context) (contracts.ScriptMetadata, error) {
	select {
	case <-c.ready:
		return c.metadata, nil
	default:
	}
	select {
	case <-c.ready:
		return c.metadata, nil
	case <-c.done:
		return contracts.ScriptMetadata{}, ErrChannelClosed
	case <-ctx.Done():
		return contracts.ScriptMetadata{}, ctx.Err()
	}
}

// Done is closed once the channel to the worker is lost or closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send posts cmd with a fresh ID and waits for the response of the matching
// kind. Cancelling ctx only drops interest; the worker still runs the command.
func (c *Client) Send(ctx context.Context, cmd contracts.Command) (contracts.Response, error) {
	expected, err := contracts.ExpectedResponse(cmd.Kind)
	if err != nil {
		return contracts.Response{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd.ID = c.nextID.Add(1)
	ch, err := c.pending.register(cmd.ID, expected)
	if err != nil {
		return contracts.Response{}, err
	}

	c.sendMu.Lock()
	err = c.conn.Send(ctx, cmd)
	c.sendMu.Unlock()
	if err != nil {
		c.pending.unregister(cmd.ID)
		if errors.Is(err, channel.ErrClosed) {
			return contracts.Response{}, ErrChannelClosed
		}
		return contracts.Response{}, fmt.Errorf("post %s %d: %w", cmd.Kind, cmd.ID, err)
	}

	select {
	case o := <-ch:
		return o.resp, o.err
	case <-ctx.Done():
		c.pending.unregister(cmd.ID)
		return contracts.Response{}, ctx.Err()
	}
}

// Lint asks the worker to analyze text.
func (c *Client) Lint(ctx context.Context, text, ext string) (contracts.LintResult, error) {
	resp, err := c.Send(ctx, contracts.NewLintCommand(text, ext))
	if err != nil {
		return contracts.LintResult{}, err
	}
	if resp.LintResult == nil {
		return contracts.LintResult{}, fmt.Errorf("%w: %s %d has no result", ErrProtocol, resp.Kind, resp.ID)
	}
	return *resp.LintResult, nil
}

// Fix asks the worker to apply one fix, restricted to ruleID when it is not empty.
func (c *Client) Fix(ctx context.Context, text, ext, ruleID string) (contracts.FixResult, error) {
	resp, err := c.Send(ctx, contracts.NewFixCommand(text, ext, ruleID))
	if err != nil {
		return contracts.FixResult{}, err
	}
	if resp.FixResult == nil {
		return contracts.FixResult{}, fmt.Errorf("%w: %s %d has no result", ErrProtocol, resp.Kind, resp.ID)
	}
	return *resp.FixResult, nil
}

// Close closes the channel and rejects all pending calls.
func (c *Client) Close() error {
	err := c.conn.Close()
	c.shutdown(ErrChannelClosed)
	return err
}

func (c *Client) readLoop() {
	for {
		resp, err := c.conn.Receive(context.Background())
		if err != nil {
			if !errors.Is(err, channel.ErrClosed) {
				c.logger.Warn("worker channel failed", "error", err)
			}
			c.shutdown(ErrChannelClosed)
			return
		}
		c.dispatch(resp)
	}
}

func (c *Client) dispatch(resp contracts.Response) {
	if resp.Kind == contracts.ResponseInit {
		c.handleInit(resp)
		return
	}

	entry, ok := c.pending.take(resp.ID)
	if !ok {
		c.logger.Debug("dropping unmatched response", "kind", resp.Kind, "id", resp.ID)
		return
	}

	select {
	case <-c.ready:
	default:
		entry.resolve(outcome{err: fmt.Errorf("%w: %s %d before init", ErrProtocol, resp.Kind, resp.ID)})
		return
	}

	switch resp.Kind {
	case entry.expected:
		entry.resolve(outcome{resp: resp})
	case contracts.ResponseError:
		entry.resolve(outcome{err: &RemoteError{ID: resp.ID, Message: resp.Error}})
	default:
		entry.resolve(outcome{err: fmt.Errorf("%w: want %s, got %s for %d", ErrKindMismatch, entry.expected, resp.Kind, resp.ID)})
	}
}

func (c *Client) handleInit(resp contracts.Response) {
	first := false
	c.initOnce.Do(func() {
		first = true
		if resp.Metadata != nil {
			c.metadata = *resp.Metadata
		}
		close(c.ready)
	})
	if !first {
		c.logger.Warn("ignoring duplicate init")
		return
	}
	c.logger.Debug("worker initialized", "engine", c.metadata.Name, "version", c.metadata.Version)
}

func (c *Client) shutdown(cause error) {
	c.closeOnce.Do(func() {
		if n := c.pending.failAll(cause); n > 0 {
			c.logger.Warn("rejected pending commands", "count", n, "error", cause)
		}
		close(c.done)
	})
}
