// Package render turns a Markdown source file into a finished HTML page.
//
// The pipeline: extract front matter and title, expand template tags in the
// body, convert the body to HTML, then expand the page's layout with the
// merged variables.
package render

import (
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nramenta/deco/internal/frontmatter"
	"github.com/nramenta/deco/internal/model"
	"github.com/nramenta/deco/internal/tmpl"
)

var (
	// ErrNoLayout is returned when neither front matter nor site data names
	// a layout.
	ErrNoLayout = errors.New("no layout specified in front matter or site data")
	// ErrSourceUnreadable is returned when the source document cannot be
	// read.
	ErrSourceUnreadable = errors.New("source file is not readable")
)

// DataLoader provides the site-wide variables.
type DataLoader interface {
	Load() (model.SiteData, error)
}

// TemplateLoader compiles a template by identifier: a layout name for the
// layout service, the source text itself for the inline service.
type TemplateLoader interface {
	Load(id string) (tmpl.Template, error)
}

// Converter turns Markdown into HTML.
type Converter interface {
	Convert(src []byte) ([]byte, error)
}

// Options holds the collaborators of a Renderer.
type Options struct {
	Fs       afero.Fs
	Data     DataLoader
	Layouts  TemplateLoader
	Inline   TemplateLoader
	Markdown Converter
	Logger   *slog.Logger
}

// Renderer builds pages. It holds the template services for the whole run so
// compiled templates are reused between documents.
type Renderer struct {
	fs       afero.Fs
	data     DataLoader
	layouts  TemplateLoader
	inline   TemplateLoader
	markdown Converter
	logger   *slog.Logger
}

// New returns a Renderer. Fs, Layouts, Inline and Markdown are required.
func New(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		fs:       opts.Fs,
		data:     opts.Data,
		layouts:  opts.Layouts,
		inline:   opts.Inline,
		markdown: opts.Markdown,
		logger:   logger,
	}
}

// Page is a rendered document along with the context it was rendered with.
type Page struct {
	Layout  string
	Context model.Context
	HTML    []byte
}

// RenderPage reads sourcePath and returns the finished HTML.
func (r *Renderer) RenderPage(sourcePath string) ([]byte, error) {
	page, err := r.Page(sourcePath)
	if err != nil {
		return nil, err
	}
	return page.HTML, nil
}

// Page reads sourcePath and renders it, returning the full result.
func (r *Renderer) Page(sourcePath string) (*Page, error) {
	data, err := r.loadData()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}

	raw, err := afero.ReadFile(r.fs, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, sourcePath, err)
	}

	page, err := r.renderDocument(string(raw), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	r.logger.Debug("rendered page", "source", sourcePath, "layout", page.Layout, "bytes", len(page.HTML))
	return page, nil
}

// RenderDocument renders an in-memory source document.
func (r *Renderer) RenderDocument(raw string) ([]byte, error) {
	data, err := r.loadData()
	if err != nil {
		return nil, err
	}
	page, err := r.renderDocument(raw, data)
	if err != nil {
		return nil, err
	}
	return page.HTML, nil
}

func (r *Renderer) loadData() (model.SiteData, error) {
	if r.data == nil {
		return model.SiteData{}, nil
	}
	data, err := r.data.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load site data: %w", err)
	}
	return data, nil
}

func (r *Renderer) renderDocument(raw string, data model.SiteData) (*Page, error) {
	doc, err := frontmatter.Extract(raw)
	if err != nil {
		return nil, err
	}

	vars := model.Merge(map[string]interface{}{"title": doc.TitleValue()}, doc.FrontMatter, data)

	bodyTpl, err := r.inline.Load(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	expanded, err := bodyTpl.Render(blankNils(vars))
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}

	body, err := r.markdown.Convert([]byte(expanded))
	if err != nil {
		return nil, err
	}

	ctx := model.Merge(
		map[string]interface{}{"title": doc.TitleValue(), "body": htmltemplate.HTML(body)},
		doc.FrontMatter,
		data,
	)
	if ctx["title"] == nil {
		if t, ok := doc.FrontMatter["title"]; ok {
			ctx["title"] = t
		}
	}

	layout, ok := ctx.Layout()
	if !ok {
		return nil, ErrNoLayout
	}
	layoutTpl, err := r.layouts.Load(layout)
	if err != nil {
		return nil, err
	}
	out, err := layoutTpl.Render(ctx)
	if err != nil {
		return nil, err
	}

	return &Page{Layout: layout, Context: ctx, HTML: []byte(out)}, nil
}

// blankNils returns a copy of vars where nil values are empty strings, so a
// null variable prints nothing in a page body.
func blankNils(vars model.Context) model.Context {
	out := make(model.Context, len(vars))
	for k, v := range vars {
		if v == nil {
			v = ""
		}
		out[k] = v
	}
	return out
}
