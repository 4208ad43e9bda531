package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"

	"textchecker/internal/app"
	"textchecker/internal/contracts"
	"textchecker/internal/logging"
)

const commandTimeout = 30 * time.Second

// Commands is a state container for Neovim command handlers.
// It tracks the attached buffer and delegates checking to a Checker.
type Commands struct {
	checker *app.Checker
	session *app.Session
	logger  *slog.Logger

	mu     sync.Mutex
	nv     *nvim.Nvim
	buffer nvim.Buffer
	active bool
}

func NewCommands(checker *app.Checker, quiet time.Duration, logger *slog.Logger) *Commands {
	c := &Commands{
		checker: checker,
		logger:  logging.Component(logger, "nvim"),
	}
	c.session = app.NewSession(checker, quiet, c.publishResult)
	return c
}

// Register registers Neovim command/function handlers.
func Register(p *plugin.Plugin, commands *Commands) error {
	p.Handle("poll", func() (string, error) {
		return "ok", nil
	})

	p.HandleCommand(&plugin.CommandOptions{
		Name: "TextcheckStart",
	}, commands.TextcheckStart)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "TextcheckFixAll",
	}, commands.TextcheckFixAll)

	p.HandleCommand(&plugin.CommandOptions{
		Name:  "TextcheckFixRule",
		NArgs: "1",
	}, commands.TextcheckFixRule)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "TextcheckMetadata",
	}, commands.TextcheckMetadata)

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "TextcheckInternalUpdate",
	}, commands.TextcheckUpdate)

	return nil
}

// TextcheckStart attaches the current buffer and lints it right away.
func (c *Commands) TextcheckStart(v *nvim.Nvim) error {
	buf, err := v.CurrentBuffer()
	if err != nil {
		return err
	}
	text, err := bufferText(v, buf)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.nv = v
	c.buffer = buf
	c.active = true
	c.mu.Unlock()

	c.session.LintNow(text)
	return v.Command(`echom "[textchecker] checking buffer"`)
}

// TextcheckUpdate is called from a TextChanged autocmd.
func (c *Commands) TextcheckUpdate(v *nvim.Nvim) error {
	buf, ok := c.attached()
	if !ok {
		return nil
	}
	text, err := bufferText(v, buf)
	if err != nil {
		return err
	}
	c.session.OnChange(text)
	return nil
}

func (c *Commands) TextcheckFixAll(v *nvim.Nvim) error {
	return c.fix(v, "")
}

func (c *Commands) TextcheckFixRule(v *nvim.Nvim, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("TextcheckFixRule needs a rule id")
	}
	return c.fix(v, args[0])
}

// TextcheckMetadata echoes the worker's name, version and rules.
func (c *Commands) TextcheckMetadata(v *nvim.Nvim) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	meta, err := c.checker.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("textchecker metadata: %w", err)
	}
	return writeLines(v, metadataLines(meta))
}

func (c *Commands) fix(v *nvim.Nvim, ruleID string) error {
	buf, ok := c.attached()
	if !ok {
		return v.Command(`echom "[textchecker] run :TextcheckStart first"`)
	}
	text, err := bufferText(v, buf)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var result contracts.FixResult
	if ruleID == "" {
		result = c.checker.FixAll(ctx, text)
	} else {
		result = c.checker.FixRule(ctx, text, ruleID)
	}
	if result.Output == text {
		return v.Command(`echom "[textchecker] nothing to fix"`)
	}

	if err := v.SetBufferLines(buf, 0, -1, true, splitLines(result.Output)); err != nil {
		return err
	}
	c.session.LintNow(result.Output)
	return nil
}

func (c *Commands) attached() (nvim.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer, c.active
}

// publishResult replaces the quickfix list with the latest messages.
func (c *Commands) publishResult(r app.Result) {
	c.mu.Lock()
	v, buf, active := c.nv, c.buffer, c.active
	c.mu.Unlock()
	if !active || v == nil {
		return
	}

	items := quickfixItems(int(buf), r.Text, r.Messages())
	if err := v.Call("setqflist", nil, items, "r"); err != nil {
		c.logger.Error("setqflist", "error", err)
		return
	}
	c.logger.Debug("published quickfix", "rev", r.Seq, "items", len(items))
}

// Close stops linting.
func (c *Commands) Close() {
	c.session.Close()
}
