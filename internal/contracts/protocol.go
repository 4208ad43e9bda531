// Package contracts defines the messages exchanged between the host and the
// lint worker, and between the page server and the browser.
package contracts

import "fmt"

// CommandKind names a request sent from the host to the worker.
type CommandKind string

// ResponseKind names a message sent from the worker to the host.
type ResponseKind string

const (
	// CommandLint asks the worker to analyze a document.
	CommandLint CommandKind = "lint"
	// CommandFix asks the worker to apply at most one fix to a document.
	CommandFix CommandKind = "fix"
)

const (
	// ResponseInit is posted once by the worker before any other response.
	ResponseInit ResponseKind = "init"
	// ResponseLintResult answers a lint command.
	ResponseLintResult ResponseKind = "lint:result"
	// ResponseFixResult answers a fix command.
	ResponseFixResult ResponseKind = "fix:result"
	// ResponseError answers a command the worker could not interpret.
	ResponseError ResponseKind = "error"
)

// Command is a request envelope. ID is assigned by the sender and echoed by
// the matching response.
type Command struct {
	Kind   CommandKind `json:"command" msgpack:"command"`
	ID     uint64      `json:"id" msgpack:"id"`
	Text   string      `json:"text" msgpack:"text"`
	Ext    string      `json:"ext" msgpack:"ext"`
	RuleID string      `json:"ruleId,omitempty" msgpack:"ruleId,omitempty"`
}

// Response is a worker envelope. Exactly one payload field is set, chosen by Kind.
type Response struct {
	Kind       ResponseKind    `json:"command" msgpack:"command"`
	ID         uint64          `json:"id" msgpack:"id"`
	Metadata   *ScriptMetadata `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
	LintResult *LintResult     `json:"lintResult,omitempty" msgpack:"lintResult,omitempty"`
	FixResult  *FixResult      `json:"fixResult,omitempty" msgpack:"fixResult,omitempty"`
	Error      string          `json:"error,omitempty" msgpack:"error,omitempty"`
}

// NewLintCommand builds a lint command. The ID is filled in when it is sent.
func NewLintCommand(text, ext string) Command {
	return Command{Kind: CommandLint, Text: text, Ext: ext}
}

// NewFixCommand builds a fix command. An empty ruleID fixes across all rules.
func NewFixCommand(text, ext, ruleID string) Command {
	return Command{Kind: CommandFix, Text: text, Ext: ext, RuleID: ruleID}
}

// ExpectedResponse returns the response kind that answers a command kind.
func ExpectedResponse(kind CommandKind) (ResponseKind, error) {
	switch kind {
	case CommandLint:
		return ResponseLintResult, nil
	case CommandFix:
		return ResponseFixResult, nil
	default:
		return "", fmt.Errorf("unknown command kind %q", kind)
	}
}

// Valid reports whether k is one of the known response kinds.
func (k ResponseKind) Valid() bool {
	switch k {
	case ResponseInit, ResponseLintResult, ResponseFixResult, ResponseError:
		return true
	default:
		return false
	}
}
