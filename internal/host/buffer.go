// Package host exposes the checker to Neovim as a remote plugin.
package host

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/neovim/go-client/nvim"

	"textchecker/internal/contracts"
)

func bufferText(v *nvim.Nvim, buf nvim.Buffer) (string, error) {
	lines, err := v.BufferLines(buf, 0, -1, true)
	if err != nil {
		return "", err
	}
	return joinLines(lines), nil
}

// joinLines turns buffer lines into text with a final newline, the way the
// buffer is written to disk.
func joinLines(lines [][]byte) string {
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.Join(lines, []byte("\n"))) + "\n"
}

// splitLines is the inverse of joinLines.
func splitLines(text string) [][]byte {
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	lines := make([][]byte, len(parts))
	for i, part := range parts {
		lines[i] = []byte(part)
	}
	return lines
}

// quickfixItems converts messages on text into setqflist() entries.
func quickfixItems(bufnr int, text string, messages []contracts.Message) []map[string]any {
	items := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		items = append(items, map[string]any{
			"bufnr": bufnr,
			"lnum":  msg.Line,
			"col":   byteColumn(text, msg.Index),
			"text":  fmt.Sprintf("%s (%s)", msg.Message, msg.RuleID),
			"type":  quickfixType(msg.Severity),
		})
	}
	return items
}

// byteColumn is the 1-based byte column of offset, which is what setqflist()
// expects when vcol is unset.
func byteColumn(text string, offset int) int {
	offset = min(max(offset, 0), len(text))
	return offset - (strings.LastIndexByte(text[:offset], '\n') + 1) + 1
}

func quickfixType(s contracts.Severity) string {
	switch s {
	case contracts.SeverityError:
		return "E"
	case contracts.SeverityWarning:
		return "W"
	default:
		return "I"
	}
}

type outWriter interface {
	WriteOut(str string) error
}

// writeLines echoes lines to the message area. Output is only flushed to
// the screen at a newline.
func writeLines(w outWriter, lines []string) error {
	for _, line := range lines {
		if err := w.WriteOut(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func metadataLines(meta contracts.ScriptMetadata) []string {
	lines := []string{fmt.Sprintf("%s %s", meta.Name, meta.Version)}
	if meta.Homepage != "" {
		lines = append(lines, meta.Homepage)
	}
	for _, rule := range meta.Rules {
		state := "off"
		if rule.Enabled {
			state = "on"
		}
		fixable := ""
		if rule.Fixable {
			fixable = ", fixable"
		}
		lines = append(lines, fmt.Sprintf("  %s [%s%s] %s", rule.ID, state, fixable, rule.Description))
	}
	return lines
}
