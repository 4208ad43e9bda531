package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segmentTexts(src *Source) []string {
	out := make([]string, 0, len(src.Segments))
	for _, seg := range src.Segments {
		out = append(out, src.SegmentText(seg))
	}
	return out
}

func TestPlainTextIsOneSegment(t *testing.T) {
	src := NewSource("a `b` c", ".txt")
	assert.Equal(t, []string{"a `b` c"}, segmentTexts(src))

	assert.Empty(t, NewSource("", ".txt").Segments)
}

func TestMarkdownSkipsCode(t *testing.T) {
	text := "# Title\n\nUse `TODO:` here\n\n```go\n// TODO: in code\n```\n\n<div>TODO: html</div>\n"
	src := NewSource(text, ".md")

	texts := segmentTexts(src)
	assert.Contains(t, texts, "Title")
	assert.Contains(t, texts, "Use ")
	assert.Contains(t, texts, " here")
	for _, s := range texts {
		assert.NotContains(t, s, "TODO")
	}
}

func TestMarkdownVerbatimBlocks(t *testing.T) {
	text := "Use `x`\n\n```go\n// TODO: in code\n```\n\n    indented()\n\n<div>TODO: html</div>\n"
	src := NewSource(text, ".md")

	require.Len(t, src.Verbatim, 3)
	assert.Contains(t, src.SegmentText(src.Verbatim[0]), "// TODO: in code")
	assert.Contains(t, src.SegmentText(src.Verbatim[1]), "indented()")
	assert.Contains(t, src.SegmentText(src.Verbatim[2]), "<div>TODO: html</div>")

	assert.Empty(t, NewSource(text, ".txt").Verbatim)
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown(".md"))
	assert.True(t, IsMarkdown(".MARKDOWN"))
	assert.False(t, IsMarkdown(".txt"))
}

func TestPosition(t *testing.T) {
	src := NewSource("ab\ncé d", ".txt")

	line, col := src.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = src.Position(7)
	assert.Equal(t, 2, line)
	assert.Equal(t, 4, col)

	line, col = src.Position(100)
	assert.Equal(t, 2, line)
	assert.Equal(t, 5, col)
}

func TestLines(t *testing.T) {
	src := NewSource("one\r\ntwo\n", ".txt")
	require.Equal(t, 3, src.Lines())
	assert.Equal(t, "one", src.Text[src.Line(0).Start:src.Line(0).End])
	assert.Equal(t, "two", src.Text[src.Line(1).Start:src.Line(1).End])
	assert.Equal(t, Segment{Start: 9, End: 9}, src.Line(2))
}
