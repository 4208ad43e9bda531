package contracts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedResponse(t *testing.T) {
	kind, err := ExpectedResponse(CommandLint)
	require.NoError(t, err)
	assert.Equal(t, ResponseLintResult, kind)

	kind, err = ExpectedResponse(CommandFix)
	require.NoError(t, err)
	assert.Equal(t, ResponseFixResult, kind)

	_, err = ExpectedResponse("format")
	assert.Error(t, err)
}

func TestResponseKindValid(t *testing.T) {
	for _, k := range []ResponseKind{ResponseInit, ResponseLintResult, ResponseFixResult, ResponseError} {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, ResponseKind("lint").Valid())
}

func TestCommandWireShape(t *testing.T) {
	raw, err := json.Marshal(NewFixCommand("a", ".md", "no-todo"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"fix","id":0,"text":"a","ext":".md","ruleId":"no-todo"}`, string(raw))

	raw, err = json.Marshal(NewLintCommand("a", ".md"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ruleId")
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(9).String())
}

func TestInternalError(t *testing.T) {
	msg := InternalError(errors.New("boom"))
	assert.Equal(t, InternalErrorRuleID, msg.RuleID)
	assert.Equal(t, "internal error: boom", msg.Message)
	assert.False(t, msg.Fixable())
}
