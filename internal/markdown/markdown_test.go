package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convert(t *testing.T, c *Converter, src string) string {
	t.Helper()
	out, err := c.Convert([]byte(src))
	require.NoError(t, err)
	return string(out)
}

func TestConvertBasics(t *testing.T) {
	c := New(Options{})

	assert.Contains(t, convert(t, c, "Hello **world**"), "<strong>world</strong>")
	assert.Contains(t, convert(t, c, "~~gone~~"), "<del>gone</del>")
}

func TestConvertTables(t *testing.T) {
	html := convert(t, New(Options{}), "| a | b |\n|---|---|\n| 1 | 2 |\n")

	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>1</td>")
}

func TestConvertFootnotes(t *testing.T) {
	html := convert(t, New(Options{}), "Text[^1].\n\n[^1]: The note.\n")

	assert.Contains(t, html, `class="footnotes"`)
	assert.Contains(t, html, "The note.")
}

func TestConvertDefinitionList(t *testing.T) {
	html := convert(t, New(Options{}), "Term\n: Definition\n")

	assert.Contains(t, html, "<dt>Term</dt>")
	assert.Contains(t, html, "<dd>Definition</dd>")
}

func TestConvertHeadingAttributes(t *testing.T) {
	html := convert(t, New(Options{}), "## Section {#custom}\n")

	assert.Contains(t, html, `<h2 id="custom">Section</h2>`)
}

func TestConvertKeepsRawHTML(t *testing.T) {
	html := convert(t, New(Options{}), `<div class="note">kept</div>`+"\n")

	assert.Contains(t, html, `<div class="note">kept</div>`)
}

func TestConvertKeepsNumericReferences(t *testing.T) {
	html := convert(t, New(Options{}), "Mail &#x61;&#64;&#98;&#46;&#99;&#111; now & then\n")

	assert.Contains(t, html, "&#x61;&#64;&#98;&#46;&#99;&#111;")
	assert.Contains(t, html, "now &amp; then")
}

func TestConvertHardWraps(t *testing.T) {
	assert.NotContains(t, convert(t, New(Options{}), "one\ntwo"), "<br")
	assert.Contains(t, convert(t, New(Options{HardWraps: true}), "one\ntwo"), "<br")
}

func TestConvertHighlighting(t *testing.T) {
	html := convert(t, New(Options{HighlightStyle: "monokai"}), "```go\nfunc main() {}\n```\n")

	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "main")
}
