package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"textchecker/internal/contracts"
)

var (
	pathColor    = color.New(color.Bold, color.Underline)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	ruleColor    = color.New(color.Faint)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

// fileReport is the lint outcome of one file.
type fileReport struct {
	Path     string
	Text     string
	Messages []contracts.Message
}

func severityColor(s contracts.Severity) *color.Color {
	switch s {
	case contracts.SeverityError:
		return errorColor
	case contracts.SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

// printReport writes the messages of one file with the offending source line
// and a caret under the reported range.
func printReport(w io.Writer, r fileReport) {
	if len(r.Messages) == 0 {
		return
	}
	pathColor.Fprintln(w, r.Path)
	for _, msg := range r.Messages {
		fmt.Fprintf(w, "  %d:%d  %s  %s  %s\n",
			msg.Line, msg.Column,
			severityColor(msg.Severity).Sprint(msg.Severity),
			msg.Message,
			ruleColor.Sprint(msg.RuleID))

		line, caret := caretLine(r.Text, msg)
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "    %s\n    %s\n", line, caretColor.Sprint(caret))
	}
	fmt.Fprintln(w)
}

// caretLine returns the source line containing msg and a caret marker
// aligned by display width, so wide characters line up.
func caretLine(text string, msg contracts.Message) (string, string) {
	start := msg.Range.Start()
	end := msg.Range.End()
	if start < 0 || start > len(text) || end < start {
		return "", ""
	}
	if end > len(text) {
		end = len(text)
	}

	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		lineEnd = start + i
	}
	if end > lineEnd {
		end = lineEnd
	}

	line := text[lineStart:lineEnd]
	if strings.TrimSpace(line) == "" && end == start {
		return "", ""
	}
	pad := runewidth.StringWidth(text[lineStart:start])
	width := runewidth.StringWidth(text[start:end])
	if width < 1 {
		width = 1
	}
	return line, strings.Repeat(" ", pad) + strings.Repeat("^", width)
}

func printSummary(w io.Writer, files, messages int) {
	if messages == 0 {
		fmt.Fprintf(w, "%d file(s) checked, no problems\n", files)
		return
	}
	errorColor.Fprintf(w, "%d problem(s) in %d file(s)\n", messages, files)
}
