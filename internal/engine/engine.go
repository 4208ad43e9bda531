// Package engine declares the lint engine capability the worker drives.
package engine

import (
	"context"

	"textchecker/internal/contracts"
)

// Engine analyzes and fixes documents. Implementations need not be safe for
// concurrent use; the worker calls them one command at a time.
type Engine interface {
	Metadata() contracts.ScriptMetadata
	Analyze(ctx context.Context, text, ext string) (contracts.LintResult, error)
	// Autofix applies at most one fix, restricted to ruleID when it is not empty.
	Autofix(ctx context.Context, text, ext, ruleID string) (contracts.FixResult, error)
}
