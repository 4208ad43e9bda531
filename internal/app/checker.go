// Package app connects document surfaces (the page, the editor, the file
// watcher) to a lint worker. Nothing here returns errors to the surface:
// failures become results carrying an internal-error message.
package app

import (
	"context"
	"errors"
	"log/slog"

	"textchecker/internal/client"
	"textchecker/internal/contracts"
	"textchecker/internal/fix"
	"textchecker/internal/logging"
)

// Status strings reported while a command is in flight.
const (
	StatusLinting = "linting..."
	StatusLinted  = "linted"
	StatusFixing  = "fixing..."
	StatusFixed   = "fixed"
)

// StatusFunc receives status updates. It may be called from any goroutine.
type StatusFunc func(status string)

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithStatus sets the status callback.
func WithStatus(fn StatusFunc) CheckerOption {
	return func(c *Checker) {
		c.status = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// Checker lints and fixes documents of one file extension through a worker.
type Checker struct {
	client *client.Client
	ext    string
	status StatusFunc
	logger *slog.Logger
	base   *slog.Logger
}

// NewChecker creates a checker for documents with extension ext.
func NewChecker(c *client.Client, ext string, opts ...CheckerOption) *Checker {
	checker := &Checker{client: c, ext: ext}
	for _, opt := range opts {
		opt(checker)
	}
	checker.base = checker.logger
	checker.logger = logging.Component(checker.base, "checker")
	return checker
}

// Ext returns the file extension sent with every command.
func (c *Checker) Ext() string {
	return c.ext
}

// Metadata waits for the worker to start and returns its metadata.
func (c *Checker) Metadata(ctx context.Context) (contracts.ScriptMetadata, error) {
	return c.client.Ready(ctx)
}

// LintText lints text in the worker.
func (c *Checker) LintText(ctx context.Context, text string) []contracts.LintResult {
	c.setStatus(StatusLinting)
	defer c.setStatus(StatusLinted)

	result, err := c.client.Lint(ctx, text, c.ext)
	if err != nil {
		c.logFailure("lint", err)
		result = contracts.LintResult{Messages: []contracts.Message{contracts.InternalError(err)}}
	}
	return []contracts.LintResult{result}
}

// FixText applies the fix of msg locally, without a round trip to the
// worker. msg must come from a result computed against text.
func (c *Checker) FixText(_ context.Context, text string, msg *contracts.Message) contracts.FixResult {
	c.setStatus(StatusFixing)
	defer c.setStatus(StatusFixed)

	if msg == nil || !msg.Fixable() {
		return identity(text)
	}
	output, err := fix.ApplyMessage(text, *msg)
	if err != nil {
		c.logFailure("fix", err)
		return degraded(text, err)
	}
	return contracts.FixResult{
		Output:    output,
		Applied:   []contracts.Message{*msg},
		Remaining: []contracts.Message{},
	}
}

// FixAll asks the worker for one fix across all rules.
func (c *Checker) FixAll(ctx context.Context, text string) contracts.FixResult {
	return c.fixRemote(ctx, text, "")
}

// FixRule asks the worker for one fix of rule ruleID.
func (c *Checker) FixRule(ctx context.Context, text, ruleID string) contracts.FixResult {
	return c.fixRemote(ctx, text, ruleID)
}

func (c *Checker) fixRemote(ctx context.Context, text, ruleID string) contracts.FixResult {
	c.setStatus(StatusFixing)
	defer c.setStatus(StatusFixed)

	result, err := c.client.Fix(ctx, text, c.ext, ruleID)
	if err != nil {
		c.logFailure("fix", err, "rule", ruleID)
		return degraded(text, err)
	}
	return result
}

func (c *Checker) setStatus(status string) {
	if c.status != nil {
		c.status(status)
	}
}

func (c *Checker) logFailure(op string, err error, args ...any) {
	args = append(args, "op", op, "error", err)
	if errors.Is(err, context.Canceled) {
		c.logger.Debug("command abandoned", args...)
		return
	}
	c.logger.Error("command failed", args...)
}

func identity(text string) contracts.FixResult {
	return contracts.FixResult{
		Output:    text,
		Applied:   []contracts.Message{},
		Remaining: []contracts.Message{},
	}
}

func degraded(text string, err error) contracts.FixResult {
	result := identity(text)
	result.Remaining = append(result.Remaining, contracts.InternalError(err))
	return result
}
