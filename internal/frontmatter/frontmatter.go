// Package frontmatter splits a Markdown source into its optional YAML front
// matter block, an optional leading "# Title" heading and the remaining body.
package frontmatter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	adrgfm "github.com/adrg/frontmatter"

	"github.com/nramenta/deco/internal/model"
)

// ErrInvalidFrontMatter is wrapped by Extract when the front matter block is
// not a valid YAML mapping.
var ErrInvalidFrontMatter = errors.New("invalid front matter")

var (
	lineEndings = regexp.MustCompile(`\r\n|\r`)
	blockRe     = regexp.MustCompile(`(?s)^---\s*\n(.+?)\n---\s*(?:\n|$)`)
	headingRe   = regexp.MustCompile(`^#[ \t]+(.+?)(?:\n|$)`)
)

// Normalize converts all line endings to "\n" and trims surrounding
// whitespace.
func Normalize(raw string) string {
	return strings.TrimSpace(lineEndings.ReplaceAllString(raw, "\n"))
}

// Extract splits raw into body, front matter and title. The front matter map
// is never nil. The title is nil when the body does not start with a level
// one heading.
func Extract(raw string) (model.Document, error) {
	doc := model.Document{FrontMatter: map[string]interface{}{}}
	text := Normalize(raw)

	if m := blockRe.FindStringSubmatchIndex(text); m != nil {
		fm, err := parseBlock(text[m[2]:m[3]])
		if err != nil {
			return model.Document{}, err
		}
		doc.FrontMatter = fm
		text = strings.TrimSpace(text[m[1]:])
	}

	if m := headingRe.FindStringSubmatchIndex(text); m != nil {
		title := strings.TrimSpace(text[m[2]:m[3]])
		doc.Title = &title
		text = strings.TrimSpace(text[m[1]:])
	}

	doc.Body = text
	return doc, nil
}

// parseBlock decodes the YAML between the delimiters. The block is handed to
// adrg/frontmatter with canonical delimiters so only its YAML format applies.
func parseBlock(block string) (map[string]interface{}, error) {
	var fm map[string]interface{}
	src := "---\n" + block + "\n---\n"
	if _, err := adrgfm.Parse(strings.NewReader(src), &fm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontMatter, err)
	}
	if fm == nil {
		fm = map[string]interface{}{}
	}
	return fm, nil
}
