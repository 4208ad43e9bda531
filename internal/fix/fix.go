// Package fix applies text-replacement fixes produced by lint rules.
package fix

import (
	"errors"
	"fmt"

	"textchecker/internal/contracts"
)

// ErrRangeOutOfBounds reports a fix whose range cannot belong to the text it
// is applied to. It usually means the fix was computed against another
// version of the document.
var ErrRangeOutOfBounds = errors.New("fix range out of bounds")

// Apply replaces f.Range in text with f.Text. A nil fix returns text unchanged.
//
// The range is a half-open interval of byte offsets into the exact string the
// fix was computed against. Only impossible ranges are detected; applying a
// fix to a different version of the text is the caller's responsibility.
func Apply(text string, f *contracts.Fix) (string, error) {
	if f == nil {
		return text, nil
	}
	start, end := f.Range.Start(), f.Range.End()
	if start < 0 || end < start || end > len(text) {
		return text, fmt.Errorf("%w: [%d,%d) for text of length %d", ErrRangeOutOfBounds, start, end, len(text))
	}
	return text[:start] + f.Text + text[end:], nil
}

// ApplyMessage applies the fix of msg, if any.
func ApplyMessage(text string, msg contracts.Message) (string, error) {
	return Apply(text, msg.Fix)
}

// First returns the first fixable message. When ruleID is not empty only
// messages of that rule are considered.
func First(messages []contracts.Message, ruleID string) (contracts.Message, bool) {
	for _, msg := range messages {
		if !msg.Fixable() {
			continue
		}
		if ruleID != "" && msg.RuleID != ruleID {
			continue
		}
		return msg, true
	}
	return contracts.Message{}, false
}

// ApplyFirst applies the fix chosen by First and splits messages into the
// applied one and the remaining ones. When nothing applies the output is text.
func ApplyFirst(text string, messages []contracts.Message, ruleID string) (contracts.FixResult, error) {
	result := contracts.FixResult{
		Output:    text,
		Applied:   []contracts.Message{},
		Remaining: []contracts.Message{},
	}
	target, ok := First(messages, ruleID)
	if !ok {
		result.Remaining = append(result.Remaining, messages...)
		return result, nil
	}

	output, err := Apply(text, target.Fix)
	if err != nil {
		result.Remaining = append(result.Remaining, messages...)
		return result, err
	}
	result.Output = output

	applied := false
	for _, msg := range messages {
		if !applied && msg.Fixable() && msg.Index == target.Index && msg.RuleID == target.RuleID && msg.Range == target.Range {
			result.Applied = append(result.Applied, msg)
			applied = true
			continue
		}
		result.Remaining = append(result.Remaining, msg)
	}
	return result, nil
}
