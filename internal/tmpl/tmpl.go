// Package tmpl provides the two template services used to build a page: a
// layout loader backed by a directory of html/template files and an inline
// loader that expands text/template tags in page bodies. Both compile once and
// serve later loads from an in-memory cache.
package tmpl

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// ErrLayoutNotFound is wrapped when a layout file does not exist.
var ErrLayoutNotFound = errors.New("layout not found")

// partialsDir holds templates made available to every layout by name.
const partialsDir = "partials"

// maxInline bounds the inline cache; it is reset when full.
const maxInline = 256

// Template is a compiled template. Looking up a variable that is not in the
// context is an execution error.
type Template interface {
	Render(vars map[string]interface{}) (string, error)
}

type executor interface {
	Execute(w io.Writer, data interface{}) error
	Name() string
}

type compiled struct {
	t executor
}

func (c compiled) Render(vars map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := c.t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", c.t.Name(), err)
	}
	return buf.String(), nil
}

// LayoutLoader loads named layouts from a directory. Files under the
// directory's partials/ subdirectory are parsed along with every layout and
// can be included with {{ template "name.html" . }}.
type LayoutLoader struct {
	fs    afero.Fs
	dir   string
	funcs htmltemplate.FuncMap

	mu    sync.Mutex
	cache map[string]cachedLayout
}

type cachedLayout struct {
	stamp string
	tpl   *htmltemplate.Template
}

// NewLayoutLoader returns a loader for layouts under dir.
func NewLayoutLoader(fsys afero.Fs, dir string, funcs htmltemplate.FuncMap) *LayoutLoader {
	return &LayoutLoader{
		fs:    fsys,
		dir:   dir,
		funcs: funcs,
		cache: make(map[string]cachedLayout),
	}
}

// Path resolves a layout name to its file path, refusing names that leave
// the layouts directory.
func (l *LayoutLoader) Path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid layout name '%s'", name)
	}
	return filepath.Join(l.dir, clean), nil
}

// Load returns the compiled layout called name. A cached template is reused
// until the layout or one of the partials changes on disk.
func (l *LayoutLoader) Load(name string) (Template, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s' in '%s'", ErrLayoutNotFound, name, l.dir)
		}
		return nil, fmt.Errorf("failed to stat layout '%s': %w", path, err)
	}
	partials, err := l.partials()
	if err != nil {
		return nil, err
	}
	stamp := stampOf(info) + stampOfAll(partials)

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[path]; ok && c.stamp == stamp {
		return compiled{c.tpl}, nil
	}

	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout '%s': %w", path, err)
	}
	tpl, err := htmltemplate.New(name).Funcs(l.funcs).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout '%s': %w", name, err)
	}
	for _, p := range partials {
		psrc, err := afero.ReadFile(l.fs, p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read partial '%s': %w", p.path, err)
		}
		if _, err := tpl.New(p.name).Parse(string(psrc)); err != nil {
			return nil, fmt.Errorf("failed to parse partial '%s': %w", p.name, err)
		}
	}

	l.cache[path] = cachedLayout{stamp: stamp, tpl: tpl}
	return compiled{tpl}, nil
}

type partialFile struct {
	name string
	path string
	info fs.FileInfo
}

func (l *LayoutLoader) partials() ([]partialFile, error) {
	dir := filepath.Join(l.dir, partialsDir)
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read partials directory '%s': %w", dir, err)
	}
	var out []partialFile
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, partialFile{name: e.Name(), path: filepath.Join(dir, e.Name()), info: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

func stampOf(info fs.FileInfo) string {
	return fmt.Sprintf("%d:%d;", info.Size(), info.ModTime().UnixNano())
}

func stampOfAll(files []partialFile) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(f.name)
		b.WriteString("=")
		b.WriteString(stampOf(f.info))
	}
	return b.String()
}

// InlineLoader compiles template source held in memory, such as a page body.
// Compiled templates are cached by a hash of their source.
type InlineLoader struct {
	funcs texttemplate.FuncMap

	mu    sync.Mutex
	cache map[uint64]*texttemplate.Template
}

// NewInlineLoader returns an InlineLoader using funcs as helpers.
func NewInlineLoader(funcs texttemplate.FuncMap) *InlineLoader {
	return &InlineLoader{funcs: funcs, cache: make(map[uint64]*texttemplate.Template)}
}

// Load compiles source, or returns the cached compilation of identical
// source.
func (l *InlineLoader) Load(source string) (Template, error) {
	key := xxhash.Sum64String(source)

	l.mu.Lock()
	defer l.mu.Unlock()

	if tpl, ok := l.cache[key]; ok {
		return compiled{tpl}, nil
	}

	name := fmt.Sprintf("__inline__%016x", key)
	tpl, err := texttemplate.New(name).Funcs(l.funcs).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if len(l.cache) >= maxInline {
		l.cache = make(map[uint64]*texttemplate.Template)
	}
	l.cache[key] = tpl
	return compiled{tpl}, nil
}
