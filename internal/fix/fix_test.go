package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textchecker/internal/contracts"
)

func TestApply(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		fix      *contracts.Fix
		expected string
	}{
		{"identity without fix", "hello world", nil, "hello world"},
		{"replace prefix", "hello world", &contracts.Fix{Range: contracts.Range{0, 5}, Text: "goodbye"}, "goodbye world"},
		{"delete suffix", "hello world  ", &contracts.Fix{Range: contracts.Range{11, 13}}, "hello world"},
		{"insert", "ab", &contracts.Fix{Range: contracts.Range{1, 1}, Text: "-"}, "a-b"},
		{"empty text", "", &contracts.Fix{Range: contracts.Range{0, 0}, Text: "x"}, "x"},
		{"multibyte", "日本語", &contracts.Fix{Range: contracts.Range{3, 6}, Text: "x"}, "日x語"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Apply(tc.text, tc.fix)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestApplyRejectsImpossibleRanges(t *testing.T) {
	for _, r := range []contracts.Range{{-1, 2}, {3, 2}, {0, 12}} {
		out, err := Apply("hello world", &contracts.Fix{Range: r, Text: "x"})
		assert.ErrorIs(t, err, ErrRangeOutOfBounds, r)
		assert.Equal(t, "hello world", out)
	}
}

func TestApplyMessage(t *testing.T) {
	out, err := ApplyMessage("hello world", contracts.Message{RuleID: "no-todo"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func messages() []contracts.Message {
	return []contracts.Message{
		{RuleID: "max-line-length", Index: 0},
		{RuleID: "prh", Index: 0, Range: contracts.Range{0, 5}, Fix: &contracts.Fix{Range: contracts.Range{0, 5}, Text: "Hello"}},
		{RuleID: "no-trailing-spaces", Index: 11, Range: contracts.Range{11, 12}, Fix: &contracts.Fix{Range: contracts.Range{11, 12}}},
	}
}

func TestFirst(t *testing.T) {
	msg, ok := First(messages(), "")
	require.True(t, ok)
	assert.Equal(t, "prh", msg.RuleID)

	msg, ok = First(messages(), "no-trailing-spaces")
	require.True(t, ok)
	assert.Equal(t, "no-trailing-spaces", msg.RuleID)

	_, ok = First(messages(), "max-line-length")
	assert.False(t, ok)
}

func TestApplyFirstScopedToRule(t *testing.T) {
	result, err := ApplyFirst("hello world ", messages(), "no-trailing-spaces")
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Output)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "no-trailing-spaces", result.Applied[0].RuleID)
	assert.Len(t, result.Remaining, 2)
}

func TestApplyFirstAllRules(t *testing.T) {
	result, err := ApplyFirst("hello world ", messages(), "")
	require.NoError(t, err)
	assert.Equal(t, "Hello world ", result.Output)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "prh", result.Applied[0].RuleID)
}

func TestApplyFirstIdentity(t *testing.T) {
	result, err := ApplyFirst("hello world ", messages(), "no-todo")
	require.NoError(t, err)
	assert.Equal(t, "hello world ", result.Output)
	assert.Empty(t, result.Applied)
	assert.Len(t, result.Remaining, 3)
}

func TestApplyFirstStaleRange(t *testing.T) {
	result, err := ApplyFirst("hi", messages(), "")
	assert.ErrorIs(t, err, ErrRangeOutOfBounds)
	assert.Equal(t, "hi", result.Output)
	assert.Empty(t, result.Applied)
}
