package lint

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Segment is a lintable [Start, End) byte range of the source text.
type Segment struct {
	Start int
	End   int
}

// Source is a document prepared for the rules: the raw text, the prose
// segments rules should look at, and a line index.
type Source struct {
	Text     string
	Ext      string
	Segments []Segment
	// Verbatim holds the content of markdown code and HTML blocks, in
	// document order. Whole-line rules must leave these lines alone.
	Verbatim []Segment

	lineStarts []int
}

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))

// NewSource prepares text for linting. Markdown documents are parsed and only
// their text nodes become segments, so code, raw HTML and link targets are
// never reported on. Any other extension lints the whole text.
func NewSource(text, ext string) *Source {
	src := &Source{Text: text, Ext: ext, lineStarts: lineStarts(text)}
	if IsMarkdown(ext) {
		src.Segments, src.Verbatim = markdownSegments([]byte(text))
	} else if text != "" {
		src.Segments = []Segment{{Start: 0, End: len(text)}}
	}
	return src
}

// IsMarkdown reports whether ext names a markdown document.
func IsMarkdown(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return true
	default:
		return false
	}
}

// SegmentText returns the text covered by seg.
func (s *Source) SegmentText(seg Segment) string {
	return s.Text[seg.Start:seg.End]
}

// Lines returns the number of lines in the text.
func (s *Source) Lines() int {
	return len(s.lineStarts)
}

// Line returns the byte range of the 0-based line n, without its line break.
func (s *Source) Line(n int) Segment {
	start := s.lineStarts[n]
	end := len(s.Text)
	if n+1 < len(s.lineStarts) {
		end = s.lineStarts[n+1] - 1
	}
	if end > start && s.Text[end-1] == '\r' {
		end--
	}
	return Segment{Start: start, End: end}
}

// Position converts a byte offset into a 1-based line and a 1-based column
// counted in runes. The offset is clamped to the text.
func (s *Source) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	i := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	return i + 1, utf8.RuneCountInString(s.Text[s.lineStarts[i]:offset]) + 1
}

func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func markdownSegments(source []byte) (segments, verbatim []Segment) {
	doc := markdownParser.Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindHTMLBlock:
			if lines := n.Lines(); lines.Len() > 0 {
				verbatim = append(verbatim, Segment{Start: lines.At(0).Start, End: lines.At(lines.Len() - 1).Stop})
			}
			return ast.WalkSkipChildren, nil
		case ast.KindCodeSpan, ast.KindRawHTML, ast.KindAutoLink:
			return ast.WalkSkipChildren, nil
		}
		t, ok := n.(*ast.Text)
		if !ok {
			return ast.WalkContinue, nil
		}
		seg := t.Segment
		if seg.Stop <= seg.Start {
			return ast.WalkContinue, nil
		}
		// Emphasis and escapes split prose into adjacent text nodes; join them back.
		if last := len(segments) - 1; last >= 0 && segments[last].End == seg.Start {
			segments[last].End = seg.Stop
			return ast.WalkContinue, nil
		}
		segments = append(segments, Segment{Start: seg.Start, End: seg.Stop})
		return ast.WalkContinue, nil
	})
	return segments, verbatim
}
