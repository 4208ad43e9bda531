package contracts

// Severity ranks a lint message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// InternalErrorRuleID marks the synthetic message produced when linting itself failed.
const InternalErrorRuleID = "internal-error"

// Range is a half-open [start, end) interval of byte offsets into the text a
// command carried.
type Range [2]int

// Start returns the inclusive lower bound.
func (r Range) Start() int { return r[0] }

// End returns the exclusive upper bound.
func (r Range) End() int { return r[1] }

// Fix replaces Range with Text.
type Fix struct {
	Range Range  `json:"range" msgpack:"range"`
	Text  string `json:"text" msgpack:"text"`
}

// Message is a single diagnostic.
type Message struct {
	RuleID   string   `json:"ruleId" msgpack:"ruleId"`
	Message  string   `json:"message" msgpack:"message"`
	Severity Severity `json:"severity" msgpack:"severity"`
	// Index is the byte offset of the first reported character.
	Index int `json:"index" msgpack:"index"`
	// Line and Column are 1-based; Column counts runes.
	Line   int   `json:"line" msgpack:"line"`
	Column int   `json:"column" msgpack:"column"`
	Range  Range `json:"range" msgpack:"range"`
	Fix    *Fix  `json:"fix,omitempty" msgpack:"fix,omitempty"`
}

// Fixable reports whether the message carries a fix.
func (m Message) Fixable() bool {
	return m.Fix != nil
}

// LintResult holds the messages for one document snapshot.
type LintResult struct {
	FilePath string    `json:"filePath" msgpack:"filePath"`
	Messages []Message `json:"messages" msgpack:"messages"`
}

// FixResult is the document after applying zero or one fix.
type FixResult struct {
	FilePath  string    `json:"filePath" msgpack:"filePath"`
	Output    string    `json:"output" msgpack:"output"`
	Applied   []Message `json:"applied" msgpack:"applied"`
	Remaining []Message `json:"remaining" msgpack:"remaining"`
}

// RuleMetadata describes one rule known to the engine.
type RuleMetadata struct {
	ID          string `json:"id" msgpack:"id"`
	Description string `json:"description" msgpack:"description"`
	Fixable     bool   `json:"fixable" msgpack:"fixable"`
	Enabled     bool   `json:"enabled" msgpack:"enabled"`
}

// ScriptMetadata describes the loaded lint engine. It is sent once, in the init response.
type ScriptMetadata struct {
	Name        string         `json:"name" msgpack:"name"`
	Version     string         `json:"version" msgpack:"version"`
	Homepage    string         `json:"homepage" msgpack:"homepage"`
	Description string         `json:"description" msgpack:"description"`
	Rules       []RuleMetadata `json:"rules" msgpack:"rules"`
}

// InternalError builds the marker message used when analysis failed.
func InternalError(err error) Message {
	return Message{
		RuleID:   InternalErrorRuleID,
		Message:  "internal error: " + err.Error(),
		Severity: SeverityError,
		Line:     1,
		Column:   1,
	}
}
