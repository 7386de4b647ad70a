// File: internal/render/markdown.go
package render

import (
	"bytes"
	"html"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	once sync.Once
	md   goldmark.Markdown
)

func markdown() goldmark.Markdown {
	once.Do(func() {
		md = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Raw HTML in model output is dropped, not passed through.
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return md
}

// Markdown converts an assistant reply to HTML. If conversion fails the
// escaped source is returned so callers always have something to show.
func Markdown(source string) string {
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(source), &buf); err != nil {
		return "<p>" + html.EscapeString(source) + "</p>"
	}
	return buf.String()
}
