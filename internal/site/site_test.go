package site

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nramenta/deco/internal/config"
	"github.com/nramenta/deco/internal/markdown"
	"github.com/nramenta/deco/internal/render"
	"github.com/nramenta/deco/internal/sitedata"
	"github.com/nramenta/deco/internal/tmpl"
)

type countingRenderer struct {
	next  PageRenderer
	calls map[string]int
}

func (c *countingRenderer) RenderPage(path string) ([]byte, error) {
	c.calls[path]++
	return c.next.RenderPage(path)
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(raw)
}

func newBuilder(t *testing.T, fs afero.Fs) (*Builder, *countingRenderer) {
	t.Helper()
	cfg := config.Default()
	r := render.New(render.Options{
		Fs:       fs,
		Data:     sitedata.NewLoader(fs, cfg.DataFile, nil),
		Layouts:  tmpl.NewLayoutLoader(fs, cfg.LayoutsDir, tmpl.HTMLFuncs()),
		Inline:   tmpl.NewInlineLoader(tmpl.TextFuncs()),
		Markdown: markdown.New(markdown.Options{}),
	})
	counter := &countingRenderer{next: r, calls: map[string]int{}}
	return NewBuilder(fs, cfg, counter, nil), counter
}

func seed(t *testing.T, fs afero.Fs) {
	t.Helper()
	write(t, fs, "data.yml", "layout: default.html\n")
	write(t, fs, "layouts/default.html", "<h1>{{ .title }}</h1>{{ .body }}")
	write(t, fs, "files/index.md", "# Home\n\nWelcome")
	write(t, fs, "files/posts/first.md", "# First\n\nPost")
	write(t, fs, "files/style.css", "body{}")
	write(t, fs, "files/.hidden", "secret")
}

func TestBuildRendersAndCopies(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs)
	b, _ := newBuilder(t, fs)

	report, err := b.Build(false)
	require.NoError(t, err)
	assert.Empty(t, report.Failed)

	assert.ElementsMatch(t, []string{"site/index.html", "site/posts/first.html"}, report.Rendered)
	assert.ElementsMatch(t, []string{"site/style.css"}, report.Copied)
	assert.Equal(t, "<h1>Home</h1><p>Welcome</p>\n", read(t, fs, "site/index.html"))
	assert.Equal(t, "body{}", read(t, fs, "site/style.css"))

	ok, err := afero.Exists(fs, "site/.hidden")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildHTMLOverridesMarkdown(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs)
	write(t, fs, "files/about.md", "# About")
	write(t, fs, "files/about.html", "<p>hand written</p>")
	b, counter := newBuilder(t, fs)

	_, err := b.Build(false)
	require.NoError(t, err)

	assert.Equal(t, "<p>hand written</p>", read(t, fs, "site/about.html"))
	assert.Zero(t, counter.calls["files/about.md"])
}

func TestBuildIsolatesFailures(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs)
	write(t, fs, "files/broken.md", "---\nlayout: [nope\n---\ntext")
	write(t, fs, "site/broken.html", "previous")
	b, _ := newBuilder(t, fs)

	report, err := b.Build(false)
	require.NoError(t, err)

	assert.Equal(t, []string{"files/broken.md"}, report.FailedSources())
	assert.Equal(t, "previous", read(t, fs, "site/broken.html"))
	assert.Contains(t, read(t, fs, "site/index.html"), "Home")
}

func TestBuildSkipsUnchangedPages(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs)
	b, counter := newBuilder(t, fs)

	_, err := b.Build(false)
	require.NoError(t, err)
	report, err := b.Build(false)
	require.NoError(t, err)

	assert.Empty(t, report.Rendered)
	assert.ElementsMatch(t, []string{"site/index.html", "site/posts/first.html"}, report.Skipped)
	assert.Equal(t, 1, counter.calls["files/index.md"])

	write(t, fs, "files/index.md", "# Home\n\nChanged")
	report, err = b.Build(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"site/index.html"}, report.Rendered)

	write(t, fs, "layouts/default.html", "<h2>{{ .title }}</h2>{{ .body }}")
	report, err = b.Build(false)
	require.NoError(t, err)
	assert.Len(t, report.Rendered, 2)

	report, err = b.Build(true)
	require.NoError(t, err)
	assert.Len(t, report.Rendered, 2)
}

func TestBuildRerendersOnMarkdownOptionChange(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs)
	b, counter := newBuilder(t, fs)

	_, err := b.Build(false)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Markdown.HardWraps = true
	report, err := NewBuilder(fs, cfg, counter, nil).Build(false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"site/index.html", "site/posts/first.html"}, report.Rendered)
	assert.Equal(t, 2, counter.calls["files/index.md"])
}

func TestBuildRerendersMissingOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs)
	b, _ := newBuilder(t, fs)

	_, err := b.Build(false)
	require.NoError(t, err)
	require.NoError(t, fs.Remove("site/index.html"))

	report, err := b.Build(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"site/index.html"}, report.Rendered)
}

func TestBuildMissingSourceDir(t *testing.T) {
	b, _ := newBuilder(t, afero.NewMemMapFs())

	_, err := b.Build(false)
	assert.Error(t, err)
}

func TestCleanAndFlushKeepGitignore(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "site/.gitignore", "*")
	write(t, fs, "site/index.html", "x")
	write(t, fs, "site/posts/a.html", "x")
	write(t, fs, "cache/.gitignore", "*")
	write(t, fs, "cache/manifest.yml", "x")
	b, _ := newBuilder(t, fs)

	require.NoError(t, b.Clean())
	require.NoError(t, b.Flush())

	for dir, want := range map[string]int{"site": 1, "cache": 1} {
		entries, err := afero.ReadDir(fs, dir)
		require.NoError(t, err)
		assert.Len(t, entries, want, dir)
		assert.Equal(t, ".gitignore", entries[0].Name())
	}
}

type closeErrFs struct {
	afero.Fs
}

func (f closeErrFs) Create(name string) (afero.File, error) {
	file, err := f.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return closeErrFile{file}, nil
}

type closeErrFile struct {
	afero.File
}

func (f closeErrFile) Close() error {
	_ = f.File.Close()
	return errors.New("disk full")
}

func TestCopyFileReportsCloseError(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "files/style.css", "body{}")

	err := copyFile(closeErrFs{fs}, "files/style.css", "site/style.css")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestManifestRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := Manifest{"site/index.html": "abc"}
	require.NoError(t, m.Save(fs, "cache/manifest.yml"))

	assert.Equal(t, m, LoadManifest(fs, "cache/manifest.yml"))
	assert.Equal(t, Manifest{}, LoadManifest(fs, "cache/missing.yml"))

	write(t, fs, "cache/bad.yml", "[unclosed")
	assert.Equal(t, Manifest{}, LoadManifest(fs, "cache/bad.yml"))
}

func TestReportFailedSourcesSorted(t *testing.T) {
	r := &Report{Failed: map[string]error{"b": errors.New("x"), "a": errors.New("y")}}
	assert.Equal(t, []string{"a", "b"}, r.FailedSources())
}
