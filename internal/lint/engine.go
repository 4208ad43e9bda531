// Package lint is the built-in lint engine: a small set of prose rules over
// plain text and markdown, configured from the resolved rule configuration.
package lint

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"textchecker/internal/config"
	"textchecker/internal/contracts"
	"textchecker/internal/fix"
	"textchecker/internal/version"
)

const engineName = "textchecker"

// Engine runs the enabled rules. It is not safe for concurrent use.
type Engine struct {
	rules    []Rule
	metadata contracts.ScriptMetadata
}

// Options configures New.
type Options struct {
	// Rules is the resolved rule configuration. When empty every built-in
	// rule is enabled with its defaults.
	Rules    []config.RuleConfig
	Homepage string
}

// New builds an engine. Rules this engine does not implement are listed in
// the metadata as disabled rather than rejected, since a resolved
// configuration may target a richer engine.
func New(opts Options) (*Engine, error) {
	ruleConfigs := opts.Rules
	if len(ruleConfigs) == 0 {
		ruleConfigs = DefaultRules()
	}

	e := &Engine{}
	var ruleMeta []contracts.RuleMetadata
	for _, rc := range ruleConfigs {
		factory, ok := registry[rc.ID]
		if !ok {
			ruleMeta = append(ruleMeta, contracts.RuleMetadata{
				ID:          rc.ID,
				Description: "Not available in this engine.",
			})
			continue
		}
		rule, err := factory(rc.Options)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rc.ID, err)
		}
		ruleMeta = append(ruleMeta, contracts.RuleMetadata{
			ID:          rule.ID(),
			Description: rule.Description(),
			Fixable:     rule.Fixable(),
			Enabled:     rc.Enabled,
		})
		if rc.Enabled {
			e.rules = append(e.rules, rule)
		}
	}

	e.metadata = contracts.ScriptMetadata{
		Name:        engineName,
		Version:     version.Version,
		Homepage:    opts.Homepage,
		Description: describe(ruleMeta),
		Rules:       ruleMeta,
	}
	return e, nil
}

// Metadata describes the engine and its rules.
func (e *Engine) Metadata() contracts.ScriptMetadata {
	meta := e.metadata
	meta.Rules = append([]contracts.RuleMetadata(nil), e.metadata.Rules...)
	return meta
}

// Analyze runs every enabled rule over text.
func (e *Engine) Analyze(ctx context.Context, text, ext string) (contracts.LintResult, error) {
	src := NewSource(text, ext)
	messages := make([]contracts.Message, 0)
	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			return contracts.LintResult{}, err
		}
		id := rule.ID()
		rule.Check(src, func(r Report) {
			line, column := src.Position(r.Start)
			messages = append(messages, contracts.Message{
				RuleID:   id,
				Message:  r.Message,
				Severity: r.Severity,
				Index:    r.Start,
				Line:     line,
				Column:   column,
				Range:    contracts.Range{r.Start, r.End},
				Fix:      r.Fix,
			})
		})
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Index < messages[j].Index
	})
	return contracts.LintResult{Messages: messages}, nil
}

// Autofix applies the first fixable message, restricted to ruleID when set.
// An unknown or clean rule leaves the text unchanged.
func (e *Engine) Autofix(ctx context.Context, text, ext, ruleID string) (contracts.FixResult, error) {
	result, err := e.Analyze(ctx, text, ext)
	if err != nil {
		return contracts.FixResult{}, err
	}
	return fix.ApplyFirst(text, result.Messages, ruleID)
}

func describe(rules []contracts.RuleMetadata) string {
	var enabled []string
	for _, r := range rules {
		if r.Enabled {
			enabled = append(enabled, "`"+r.ID+"`")
		}
	}
	var b strings.Builder
	b.WriteString("Prose linter for **markdown** and plain text.\n\n")
	if len(enabled) == 0 {
		b.WriteString("> [!WARNING]\n> No rules are enabled.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Enabled rules: %s.\n", strings.Join(enabled, ", "))
	return b.String()
}
