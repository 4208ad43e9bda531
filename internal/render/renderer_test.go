package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textchecker/internal/contracts"
)

func TestRenderShell(t *testing.T) {
	shell := NewRenderer().RenderShell(`<script>alert("x")</script>`)

	assert.Contains(t, shell, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	assert.NotContains(t, shell, "{{TEXT}}")
	assert.NotContains(t, shell, "{{STYLE}}")
	assert.Contains(t, shell, `new WebSocket(`)
	assert.Contains(t, shell, ".chroma")
}

func TestRenderMetadata(t *testing.T) {
	meta := contracts.ScriptMetadata{
		Name:        "<b>textchecker</b>",
		Version:     "1.2.3",
		Homepage:    "https://example.com/?a=1&b=2",
		Description: "Checks **prose**.\n\n> [!WARNING]\n> No rules are enabled.\n",
		Rules:       []contracts.RuleMetadata{{ID: "no-todo", Description: "Disallow <todo>", Enabled: true}},
	}

	out, err := NewRenderer().RenderMetadata(meta)
	require.NoError(t, err)

	assert.Contains(t, out, "&lt;b&gt;textchecker&lt;/b&gt;")
	assert.NotContains(t, out, "<b>textchecker</b>")
	assert.Contains(t, out, `<a href="https://example.com/?a=1&amp;b=2"`)
	assert.Contains(t, out, "<strong>prose</strong>")
	assert.Contains(t, out, "No rules are enabled.")
	assert.Contains(t, out, `class="chroma"`)
	assert.Contains(t, out, "no-todo")
	assert.NotContains(t, out, "Disallow <todo>")
}

func TestRenderMetadataWithoutOptionalFields(t *testing.T) {
	out, err := NewRenderer().RenderMetadata(contracts.ScriptMetadata{Name: "bare"})
	require.NoError(t, err)

	assert.NotContains(t, out, "<dt>homepage</dt>")
	assert.NotContains(t, out, "<dt>description</dt>")
	assert.Contains(t, out, "<dt>rules</dt>")
	assert.Contains(t, out, "null")
}

func TestRenderMetadataHomepageSchemes(t *testing.T) {
	testCases := map[string]struct {
		homepage string
		linked   bool
	}{
		"https":      {homepage: "https://example.com", linked: true},
		"http":       {homepage: "http://example.com/docs", linked: true},
		"javascript": {homepage: "javascript:alert(1)"},
		"mixed case": {homepage: "JavaScript:alert(1)"},
		"data":       {homepage: "data:text/html,<script>x</script>"},
		"relative":   {homepage: "/docs"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			out, err := NewRenderer().RenderMetadata(contracts.ScriptMetadata{Homepage: tc.homepage})
			require.NoError(t, err)

			assert.Contains(t, out, "<dt>homepage</dt>")
			if tc.linked {
				assert.Contains(t, out, `<a href="`+tc.homepage+`"`)
			} else {
				assert.NotContains(t, out, "<a ")
				assert.NotContains(t, out, "<script>")
			}
		})
	}
}

func TestConvertMarkdownOmitsRawHTML(t *testing.T) {
	out, err := NewRenderer().ConvertMarkdown([]byte("hello <iframe src=x></iframe>\n\n```go\nfunc main() {}\n```\n"))
	require.NoError(t, err)

	assert.NotContains(t, out, "<iframe")
	assert.Contains(t, out, "chroma")
}
