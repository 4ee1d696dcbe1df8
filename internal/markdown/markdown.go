// Package markdown converts Markdown source into HTML using goldmark with the
// extensions a "Markdown Extra" style dialect expects.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Options toggles the optional parts of the dialect.
type Options struct {
	HardWraps   bool
	Typographer bool
	// HighlightStyle is a chroma style name. Empty disables highlighting.
	HighlightStyle string
}

// Converter turns Markdown into HTML. It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// New builds a Converter.
func New(opts Options) *Converter {
	extensions := []goldmark.Extender{
		extension.GFM, // tables, strikethrough, autolinks, task lists
		extension.Footnote,
		extension.DefinitionList,
	}
	if opts.Typographer {
		extensions = append(extensions, extension.Typographer)
	}
	if opts.HighlightStyle != "" {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
		))
	}

	rendererOpts := []renderer.Option{
		gmhtml.WithUnsafe(), // raw HTML blocks and inline tags pass through
		gmhtml.WithWriter(referenceWriter{gmhtml.DefaultWriter}),
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}

	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // "## Heading {#id .class}"
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)}
}

// Convert renders src as HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.Bytes(), nil
}

var numericReference = regexp.MustCompile(`&#(?:[xX][0-9a-fA-F]{1,6}|[0-9]{1,7});`)

// referenceWriter writes numeric character references in text verbatim
// instead of decoding them, so obfuscated addresses keep their encoding.
type referenceWriter struct {
	gmhtml.Writer
}

func (rw referenceWriter) Write(w util.BufWriter, source []byte) {
	last := 0
	for _, loc := range numericReference.FindAllIndex(source, -1) {
		rw.Writer.Write(w, source[last:loc[0]])
		_, _ = w.Write(source[loc[0]:loc[1]])
		last = loc[1]
	}
	rw.Writer.Write(w, source[last:])
}
