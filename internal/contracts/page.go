package contracts

const (
	// MessageTypeChange carries the full textarea content after an edit.
	MessageTypeChange = "change"
	// MessageTypeFix asks for the client-side replacement of one message of the latest result.
	MessageTypeFix = "fix"
	// MessageTypeFixRule asks the worker to fix the first message of one rule.
	MessageTypeFixRule = "fixRule"
	// MessageTypeFixAll asks the worker to fix the first fixable message.
	MessageTypeFixAll = "fixAll"

	// MessageTypeStatus updates the status line in the browser.
	MessageTypeStatus = "status"
	// MessageTypeDiagnostics publishes the latest lint result.
	MessageTypeDiagnostics = "diagnostics"
	// MessageTypeText replaces the textarea content after a fix.
	MessageTypeText = "text"
	// MessageTypeMetadata carries the rendered script metadata panel.
	MessageTypeMetadata = "metadata"
)

// IncomingMessage is the minimal envelope used to route browser messages.
type IncomingMessage struct {
	Type string `json:"type"`
}

// ChangeMessage is sent by the browser on every edit.
type ChangeMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FixMessage selects a message of the latest diagnostics by position.
type FixMessage struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// FixRuleMessage requests a fix scoped to one rule.
type FixRuleMessage struct {
	Type   string `json:"type"`
	RuleID string `json:"ruleId"`
}

// StatusMessage carries a short status string such as "linting...".
type StatusMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// DiagnosticsMessage carries a lint result and the text it was computed against.
type DiagnosticsMessage struct {
	Type     string    `json:"type"`
	Rev      uint64    `json:"rev"`
	Text     string    `json:"text"`
	Messages []Message `json:"messages"`
}

// TextMessage replaces the document content in the browser.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MetadataMessage carries pre-rendered HTML for the metadata panel.
type MetadataMessage struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}
