// Package render produces the HTML served to the browser: the page shell and
// the script metadata panel.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"net/url"
	"strings"

	"github.com/alecthomas/chroma"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	alertcallouts "github.com/zmtcreative/gm-alert-callouts"

	"textchecker/internal/contracts"
)

const highlightStyle = "github"

//go:embed page.html
var pageTemplate string

// Renderer is a wrapper around goldmark and chroma with pre-configured extensions.
type Renderer struct {
	md        goldmark.Markdown
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			alertcallouts.AlertCallouts,
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Renderer{
		md:        md,
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(highlightStyle),
	}
}

// RenderShell returns the page with text preloaded in the editor. Diagnostics
// and metadata arrive later over the WebSocket.
func (r *Renderer) RenderShell(initial string) string {
	var css bytes.Buffer
	if err := r.formatter.WriteCSS(&css, r.style); err != nil {
		css.Reset()
	}
	page := strings.Replace(pageTemplate, "{{STYLE}}", css.String(), 1)
	return strings.Replace(page, "{{TEXT}}", stdhtml.EscapeString(initial), 1)
}

// ConvertMarkdown renders a markdown fragment. Raw HTML in the source is omitted.
func (r *Renderer) ConvertMarkdown(source []byte) (string, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderMetadata renders script metadata as a definition list. Every value is
// escaped except the description, which is rendered from markdown.
func (r *Renderer) RenderMetadata(meta contracts.ScriptMetadata) (string, error) {
	var b strings.Builder
	b.WriteString(`<dl class="metadata">`)

	writeEntry := func(key, value string) {
		fmt.Fprintf(&b, "<dt>%s</dt><dd>%s</dd>", stdhtml.EscapeString(key), value)
	}

	writeEntry("name", stdhtml.EscapeString(meta.Name))
	writeEntry("version", stdhtml.EscapeString(meta.Version))
	if meta.Homepage != "" {
		writeEntry("homepage", homepageHTML(meta.Homepage))
	}
	if meta.Description != "" {
		description, err := r.ConvertMarkdown([]byte(meta.Description))
		if err != nil {
			return "", fmt.Errorf("render description: %w", err)
		}
		writeEntry("description", description)
	}

	rules, err := r.highlightJSON(meta.Rules)
	if err != nil {
		return "", fmt.Errorf("render rules: %w", err)
	}
	writeEntry("rules", rules)

	b.WriteString("</dl>")
	return b.String(), nil
}

// highlightJSON pretty-prints v and highlights it. Chroma escapes token text.
func (r *Renderer) highlightJSON(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, string(raw))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// homepageHTML links http and https URLs. Anything else is shown as text.
func homepageHTML(homepage string) string {
	escaped := stdhtml.EscapeString(homepage)
	u, err := url.Parse(homepage)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return escaped
	}
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, escaped, escaped)
}
