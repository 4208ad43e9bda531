package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	prhRuleID           = "prh"
	morphemeMatchRuleID = "@textlint-ja/morpheme-match"
)

// Inline replaces file references in rule options with the file contents, so
// the resulting configuration can be shipped to a worker that has no access
// to the file system. Paths are resolved relative to the config file.
//
//   - prh: every dictionary in rulePaths is parsed and appended to rules;
//     rulePaths becomes empty.
//   - morpheme-match: every file in dictionaryPathList is read into
//     ruleContents; dictionaryPathList becomes empty.
//
// Rules without options are returned unchanged.
func Inline(rules []RuleConfig, configFilePath string) ([]RuleConfig, error) {
	baseDir := filepath.Dir(configFilePath)
	out := make([]RuleConfig, len(rules))
	for i, rule := range rules {
		out[i] = rule
		if rule.Options == nil {
			continue
		}
		var (
			options map[string]any
			err     error
		)
		switch rule.ID {
		case prhRuleID:
			options, err = inlinePrh(baseDir, rule.Options)
		case morphemeMatchRuleID, "morpheme-match":
			options, err = inlineMorphemeMatch(baseDir, rule.Options)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inline %s: %w", rule.ID, err)
		}
		out[i].Options = options
	}
	return out, nil
}

// PrhDictionary is the YAML layout of a prh dictionary file.
type PrhDictionary struct {
	Version int       `yaml:"version"`
	Imports []string  `yaml:"imports"`
	Rules   []PrhRule `yaml:"rules"`
}

// PrhRule maps one or more patterns to the expected spelling.
type PrhRule struct {
	Expected string   `yaml:"expected"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// AllPatterns returns Pattern and Patterns together.
func (r PrhRule) AllPatterns() []string {
	patterns := make([]string, 0, len(r.Patterns)+1)
	if r.Pattern != "" {
		patterns = append(patterns, r.Pattern)
	}
	return append(patterns, r.Patterns...)
}

func inlinePrh(baseDir string, options map[string]any) (map[string]any, error) {
	paths, err := stringList(lookup(options, "rulePaths"))
	if err != nil {
		return nil, fmt.Errorf("rulePaths: %w", err)
	}

	out := cloneOptions(options)
	entries, _ := lookup(options, "rules").([]any)
	entries = append([]any(nil), entries...)
	seen := make(map[string]bool)
	for _, path := range paths {
		resolved, err := ResolvePath(baseDir, path)
		if err != nil {
			return nil, err
		}
		rules, err := loadPrhDictionary(resolved, seen)
		if err != nil {
			return nil, err
		}
		for _, rule := range rules {
			patterns := make([]any, 0, len(rule.AllPatterns()))
			for _, p := range rule.AllPatterns() {
				patterns = append(patterns, p)
			}
			entries = append(entries, map[string]any{
				"expected": rule.Expected,
				"patterns": patterns,
			})
		}
	}
	setOption(out, "rulePaths", []any{})
	setOption(out, "rules", entries)
	return out, nil
}

func loadPrhDictionary(path string, seen map[string]bool) ([]PrhRule, error) {
	if seen[path] {
		return nil, nil
	}
	seen[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dict PrhDictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var rules []PrhRule
	for _, imported := range dict.Imports {
		resolved, err := ResolvePath(filepath.Dir(path), imported)
		if err != nil {
			return nil, err
		}
		importedRules, err := loadPrhDictionary(resolved, seen)
		if err != nil {
			return nil, err
		}
		rules = append(rules, importedRules...)
	}
	return append(rules, dict.Rules...), nil
}

func inlineMorphemeMatch(baseDir string, options map[string]any) (map[string]any, error) {
	paths, err := stringList(lookup(options, "dictionaryPathList"))
	if err != nil {
		return nil, fmt.Errorf("dictionaryPathList: %w", err)
	}
	contents := make([]any, 0, len(paths))
	for _, path := range paths {
		resolved, err := ResolvePath(baseDir, path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, err
		}
		contents = append(contents, string(data))
	}
	out := cloneOptions(options)
	setOption(out, "dictionaryPathList", []any{})
	setOption(out, "ruleContents", contents)
	return out, nil
}

func stringList(v any) ([]string, error) {
	switch typed := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return typed, nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

func cloneOptions(options map[string]any) map[string]any {
	out := make(map[string]any, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}

func untildify(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Option looks up a rule option by key, ignoring case. Viper folds the case
// of every key it reads from config files.
func Option(options map[string]any, key string) (any, bool) {
	if v, ok := options[key]; ok {
		return v, true
	}
	for k, v := range options {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func lookup(options map[string]any, key string) any {
	v, _ := Option(options, key)
	return v
}

func setOption(options map[string]any, key string, value any) {
	for k := range options {
		if strings.EqualFold(k, key) {
			delete(options, k)
		}
	}
	options[key] = value
}
