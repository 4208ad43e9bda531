// Package worker is the worker side of the protocol: it owns the lint
// engine, announces it with an init response and answers commands one at a
// time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"textchecker/internal/channel"
	"textchecker/internal/contracts"
	"textchecker/internal/engine"
	"textchecker/internal/logging"
)

// Handler answers lint and fix commands with an engine. The engine is only
// ever used by the goroutine running Serve.
type Handler struct {
	engine engine.Engine
	logger *slog.Logger
}

// NewHandler creates a handler around an already loaded engine.
func NewHandler(e engine.Engine, logger *slog.Logger) *Handler {
	return &Handler{
		engine: e,
		logger: logging.Component(logger, "worker"),
	}
}

// Serve posts the init response and then answers commands until the channel
// is closed (returns nil) or ctx is done (returns ctx.Err()).
func (h *Handler) Serve(ctx context.Context, conn channel.WorkerConn) error {
	meta := h.engine.Metadata()
	if err := conn.Send(ctx, contracts.Response{Kind: contracts.ResponseInit, Metadata: &meta}); err != nil {
		return fmt.Errorf("post init: %w", err)
	}
	h.logger.Debug("worker ready", "engine", meta.Name, "version", meta.Version, "rules", len(meta.Rules))

	for {
		cmd, err := conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, channel.ErrClosed) {
				h.logger.Debug("channel closed")
				return nil
			}
			return err
		}

		resp := h.Handle(ctx, cmd)
		if err := conn.Send(ctx, resp); err != nil {
			if errors.Is(err, channel.ErrClosed) {
				return nil
			}
			return fmt.Errorf("post %s: %w", resp.Kind, err)
		}
	}
}

// Handle answers a single command. It never fails: engine errors and panics
// degrade into a result carrying an internal-error message.
func (h *Handler) Handle(ctx context.Context, cmd contracts.Command) contracts.Response {
	switch cmd.Kind {
	case contracts.CommandLint:
		result := h.lint(ctx, cmd)
		return contracts.Response{Kind: contracts.ResponseLintResult, ID: cmd.ID, LintResult: &result}
	case contracts.CommandFix:
		result := h.fix(ctx, cmd)
		return contracts.Response{Kind: contracts.ResponseFixResult, ID: cmd.ID, FixResult: &result}
	default:
		h.logger.Warn("unknown command", "command", cmd.Kind, "id", cmd.ID)
		return contracts.Response{
			Kind:  contracts.ResponseError,
			ID:    cmd.ID,
			Error: fmt.Sprintf("unknown command %q", cmd.Kind),
		}
	}
}

func (h *Handler) lint(ctx context.Context, cmd contracts.Command) (result contracts.LintResult) {
	defer func() {
		if r := recover(); r != nil {
			result = h.degradedLint(cmd, fmt.Errorf("engine panic: %v", r))
		}
	}()

	result, err := h.engine.Analyze(ctx, cmd.Text, cmd.Ext)
	if err != nil {
		return h.degradedLint(cmd, err)
	}
	if result.Messages == nil {
		result.Messages = []contracts.Message{}
	}
	h.logger.Debug("linted", "id", cmd.ID, "ext", cmd.Ext, "messages", len(result.Messages))
	return result
}

func (h *Handler) fix(ctx context.Context, cmd contracts.Command) (result contracts.FixResult) {
	defer func() {
		if r := recover(); r != nil {
			result = h.degradedFix(cmd, fmt.Errorf("engine panic: %v", r))
		}
	}()

	result, err := h.engine.Autofix(ctx, cmd.Text, cmd.Ext, cmd.RuleID)
	if err != nil {
		return h.degradedFix(cmd, err)
	}
	h.logger.Debug("fixed", "id", cmd.ID, "rule", cmd.RuleID, "applied", len(result.Applied))
	return result
}

func (h *Handler) degradedLint(cmd contracts.Command, err error) contracts.LintResult {
	h.logger.Error("lint failed", "id", cmd.ID, "error", err)
	return contracts.LintResult{Messages: []contracts.Message{contracts.InternalError(err)}}
}

func (h *Handler) degradedFix(cmd contracts.Command, err error) contracts.FixResult {
	h.logger.Error("fix failed", "id", cmd.ID, "rule", cmd.RuleID, "error", err)
	return contracts.FixResult{
		Output:    cmd.Text,
		Applied:   []contracts.Message{},
		Remaining: []contracts.Message{contracts.InternalError(err)},
	}
}
