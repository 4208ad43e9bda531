package lint

import (
	"fmt"
	"sort"

	"textchecker/internal/config"
	"textchecker/internal/contracts"
)

// Report is what a rule emits for one problem.
type Report struct {
	Start    int
	End      int
	Message  string
	Severity contracts.Severity
	Fix      *contracts.Fix
}

// Rule checks a source and reports problems.
type Rule interface {
	ID() string
	Description() string
	Fixable() bool
	Check(src *Source, report func(Report))
}

// Factory builds a rule from its options. options may be nil.
type Factory func(options map[string]any) (Rule, error)

var registry = map[string]Factory{
	noTodoID:                  newNoTodo,
	noTrailingSpacesID:        newNoTrailingSpaces,
	maxLineLengthID:           newMaxLineLength,
	prhID:                     newPrh,
	noFullwidthAlphanumericID: newNoFullwidthAlphanumeric,
	noDoubledSpaceID:          newNoDoubledSpace,
}

// RuleIDs returns the IDs of all built-in rules, sorted.
func RuleIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultRules enables every built-in rule with its default options.
func DefaultRules() []config.RuleConfig {
	ids := RuleIDs()
	rules := make([]config.RuleConfig, 0, len(ids))
	for _, id := range ids {
		rules = append(rules, config.RuleConfig{ID: id, Enabled: true})
	}
	return rules
}

func intOption(options map[string]any, key string, fallback int) (int, error) {
	v, ok := config.Option(options, key)
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("option %s: expected a number, got %T", key, v)
	}
}

func boolOption(options map[string]any, key string, fallback bool) (bool, error) {
	v, ok := config.Option(options, key)
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("option %s: expected a boolean, got %T", key, v)
	}
	return b, nil
}
