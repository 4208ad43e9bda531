package lint

import (
	"fmt"
	"regexp"
	"strings"

	"textchecker/internal/config"
	"textchecker/internal/contracts"
)

const prhID = "prh"

type prhEntry struct {
	expected string
	pattern  *regexp.Regexp
}

// prh checks spelling against dictionaries of expected words, in the style
// of the prh proofreading tool. Dictionaries arrive already inlined.
type prh struct {
	entries []prhEntry
}

func newPrh(options map[string]any) (Rule, error) {
	raw, _ := config.Option(options, "rules")
	list, ok := raw.([]any)
	if raw != nil && !ok {
		return nil, fmt.Errorf("option rules: expected a list, got %T", raw)
	}

	r := &prh{}
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("option rules[%d]: expected a table, got %T", i, item)
		}
		expected, _ := config.Option(entry, "expected")
		expectedText, ok := expected.(string)
		if !ok || expectedText == "" {
			return nil, fmt.Errorf("option rules[%d]: expected is required", i)
		}
		patterns, err := prhPatterns(entry)
		if err != nil {
			return nil, fmt.Errorf("option rules[%d]: %w", i, err)
		}
		if len(patterns) == 0 {
			patterns = []string{expectedText}
		}
		for _, p := range patterns {
			re, err := compilePrhPattern(p)
			if err != nil {
				return nil, fmt.Errorf("option rules[%d]: %w", i, err)
			}
			r.entries = append(r.entries, prhEntry{expected: expectedText, pattern: re})
		}
	}
	return r, nil
}

func prhPatterns(entry map[string]any) ([]string, error) {
	var patterns []string
	if p, ok := config.Option(entry, "pattern"); ok {
		s, ok := p.(string)
		if !ok {
			return nil, fmt.Errorf("pattern: expected a string, got %T", p)
		}
		patterns = append(patterns, s)
	}
	if ps, ok := config.Option(entry, "patterns"); ok {
		list, ok := ps.([]any)
		if !ok {
			return nil, fmt.Errorf("patterns: expected a list, got %T", ps)
		}
		for _, p := range list {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("patterns: expected strings, got %T", p)
			}
			patterns = append(patterns, s)
		}
	}
	return patterns, nil
}

// compilePrhPattern accepts /regexp/flags or a literal string.
func compilePrhPattern(p string) (*regexp.Regexp, error) {
	if len(p) > 2 && strings.HasPrefix(p, "/") {
		if end := strings.LastIndex(p, "/"); end > 0 {
			expr, flags := p[1:end], p[end+1:]
			if strings.Contains(flags, "i") {
				expr = "(?i)" + expr
			}
			return regexp.Compile(expr)
		}
	}
	return regexp.Compile(regexp.QuoteMeta(p))
}

func (*prh) ID() string          { return prhID }
func (*prh) Description() string { return "Enforce the expected spelling from prh dictionaries." }
func (*prh) Fixable() bool       { return true }

func (r *prh) Check(src *Source, report func(Report)) {
	for _, seg := range src.Segments {
		segText := src.SegmentText(seg)
		for _, entry := range r.entries {
			correct := occurrences(segText, entry.expected)
			for _, loc := range entry.pattern.FindAllStringSubmatchIndex(segText, -1) {
				matched := segText[loc[0]:loc[1]]
				replacement := string(entry.pattern.ExpandString(nil, entry.expected, segText, loc))
				if matched == replacement || within(correct, loc[0], loc[1]) {
					continue
				}
				start, end := seg.Start+loc[0], seg.Start+loc[1]
				report(Report{
					Start:    start,
					End:      end,
					Message:  fmt.Sprintf("%s => %s", matched, replacement),
					Severity: contracts.SeverityError,
					Fix:      &contracts.Fix{Range: contracts.Range{start, end}, Text: replacement},
				})
			}
		}
	}
}

func occurrences(s, sub string) [][2]int {
	var out [][2]int
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			break
		}
		start := offset + i
		out = append(out, [2]int{start, start + len(sub)})
		offset = start + 1
	}
	return out
}

func within(spans [][2]int, start, end int) bool {
	for _, span := range spans {
		if span[0] <= start && end <= span[1] {
			return true
		}
	}
	return false
}
