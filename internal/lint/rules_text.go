package lint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"

	"textchecker/internal/contracts"
)

const (
	noTodoID                  = "no-todo"
	noTrailingSpacesID        = "no-trailing-spaces"
	maxLineLengthID           = "max-line-length"
	noFullwidthAlphanumericID = "no-fullwidth-alphanumeric"
	noDoubledSpaceID          = "no-doubled-space"
)

type noTodo struct{}

var todoPattern = regexp.MustCompile(`(?i)\b(todo|fixme):`)

func newNoTodo(map[string]any) (Rule, error) { return noTodo{}, nil }

func (noTodo) ID() string          { return noTodoID }
func (noTodo) Description() string { return "Disallow TODO: and FIXME: markers." }
func (noTodo) Fixable() bool       { return false }

func (noTodo) Check(src *Source, report func(Report)) {
	for _, seg := range src.Segments {
		for _, loc := range todoPattern.FindAllStringIndex(src.SegmentText(seg), -1) {
			report(Report{
				Start:    seg.Start + loc[0],
				End:      seg.Start + loc[1],
				Message:  fmt.Sprintf("Found %s", src.Text[seg.Start+loc[0]:seg.Start+loc[1]]),
				Severity: contracts.SeverityWarning,
			})
		}
	}
}

type noTrailingSpaces struct {
	skipBlankLines bool
}

func newNoTrailingSpaces(options map[string]any) (Rule, error) {
	skip, err := boolOption(options, "skipBlankLines", false)
	if err != nil {
		return nil, err
	}
	return noTrailingSpaces{skipBlankLines: skip}, nil
}

func (noTrailingSpaces) ID() string          { return noTrailingSpacesID }
func (noTrailingSpaces) Description() string { return "Disallow trailing whitespace at the end of lines." }
func (noTrailingSpaces) Fixable() bool       { return true }

func (r noTrailingSpaces) Check(src *Source, report func(Report)) {
	markdown := IsMarkdown(src.Ext)
	for n := 0; n < src.Lines(); n++ {
		line := src.Line(n)
		if overlapsSegment(src.Verbatim, line) {
			continue
		}
		content := src.Text[line.Start:line.End]
		trimmed := strings.TrimRight(content, " \t")
		if len(trimmed) == len(content) {
			continue
		}
		if trimmed == "" && r.skipBlankLines {
			continue
		}
		// Two spaces after text is a markdown hard line break.
		if markdown && trimmed != "" && content[len(trimmed):] == "  " {
			continue
		}
		start := line.Start + len(trimmed)
		report(Report{
			Start:    start,
			End:      line.End,
			Message:  "Trailing spaces are not allowed",
			Severity: contracts.SeverityWarning,
			Fix:      &contracts.Fix{Range: contracts.Range{start, line.End}},
		})
	}
}

type maxLineLength struct {
	max int
}

func newMaxLineLength(options map[string]any) (Rule, error) {
	limit, err := intOption(options, "max", 100)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("option max must be positive, got %d", limit)
	}
	return maxLineLength{max: limit}, nil
}

func (maxLineLength) ID() string          { return maxLineLengthID }
func (maxLineLength) Description() string { return "Limit the display width of prose lines." }
func (maxLineLength) Fixable() bool       { return false }

func (r maxLineLength) Check(src *Source, report func(Report)) {
	for n := 0; n < src.Lines(); n++ {
		line := src.Line(n)
		if !overlapsSegment(src.Segments, line) {
			continue
		}
		w := runewidth.StringWidth(src.Text[line.Start:line.End])
		if w <= r.max {
			continue
		}
		report(Report{
			Start:    line.Start,
			End:      line.End,
			Message:  fmt.Sprintf("Line is %d columns wide, maximum is %d", w, r.max),
			Severity: contracts.SeverityWarning,
		})
	}
}

func overlapsSegment(segments []Segment, line Segment) bool {
	for _, seg := range segments {
		if seg.Start < line.End && line.Start < seg.End {
			return true
		}
		if seg.Start >= line.End {
			return false
		}
	}
	return false
}

type noFullwidthAlphanumeric struct{}

var fullwidthPattern = regexp.MustCompile(`[０-９Ａ-Ｚａ-ｚ]+`)

func newNoFullwidthAlphanumeric(map[string]any) (Rule, error) { return noFullwidthAlphanumeric{}, nil }

func (noFullwidthAlphanumeric) ID() string { return noFullwidthAlphanumericID }
func (noFullwidthAlphanumeric) Description() string {
	return "Disallow full-width alphanumeric characters."
}
func (noFullwidthAlphanumeric) Fixable() bool { return true }

func (noFullwidthAlphanumeric) Check(src *Source, report func(Report)) {
	for _, seg := range src.Segments {
		for _, loc := range fullwidthPattern.FindAllStringIndex(src.SegmentText(seg), -1) {
			start, end := seg.Start+loc[0], seg.Start+loc[1]
			narrow := width.Narrow.String(src.Text[start:end])
			report(Report{
				Start:    start,
				End:      end,
				Message:  fmt.Sprintf("%s => %s", src.Text[start:end], narrow),
				Severity: contracts.SeverityError,
				Fix:      &contracts.Fix{Range: contracts.Range{start, end}, Text: narrow},
			})
		}
	}
}

type noDoubledSpace struct{}

var doubledSpacePattern = regexp.MustCompile(` {2,}`)

func newNoDoubledSpace(map[string]any) (Rule, error) { return noDoubledSpace{}, nil }

func (noDoubledSpace) ID() string          { return noDoubledSpaceID }
func (noDoubledSpace) Description() string { return "Disallow consecutive spaces between words." }
func (noDoubledSpace) Fixable() bool       { return true }

func (noDoubledSpace) Check(src *Source, report func(Report)) {
	for _, seg := range src.Segments {
		segText := src.SegmentText(seg)
		for _, loc := range doubledSpacePattern.FindAllStringIndex(segText, -1) {
			if loc[0] == 0 || loc[1] == len(segText) {
				continue
			}
			if isSpace(segText[loc[0]-1]) || isSpace(segText[loc[1]]) {
				continue
			}
			start, end := seg.Start+loc[0], seg.Start+loc[1]
			report(Report{
				Start:    start,
				End:      end,
				Message:  "Use a single space between words",
				Severity: contracts.SeverityWarning,
				Fix:      &contracts.Fix{Range: contracts.Range{start, end}, Text: " "},
			})
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
