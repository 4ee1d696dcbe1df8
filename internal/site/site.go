// Package site builds a whole site: it copies static files from the source
// directory to the output directory and renders every Markdown file.
package site

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/nramenta/deco/internal/config"
	"github.com/nramenta/deco/internal/render"
)

// PageRenderer renders one source document.
type PageRenderer interface {
	RenderPage(sourcePath string) ([]byte, error)
}

// Builder runs batch builds.
type Builder struct {
	fs       afero.Fs
	cfg      config.Config
	renderer PageRenderer
	logger   *slog.Logger
}

// NewBuilder returns a Builder.
func NewBuilder(fsys afero.Fs, cfg config.Config, renderer PageRenderer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{fs: fsys, cfg: cfg, renderer: renderer, logger: logger}
}

// Report summarises a build.
type Report struct {
	Rendered []string
	Copied   []string
	Skipped  []string
	// Failed maps a source path to the error that stopped it.
	Failed map[string]error
}

// FailedSources returns the failed source paths in sorted order.
func (r *Report) FailedSources() []string {
	out := make([]string, 0, len(r.Failed))
	for src := range r.Failed {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Build renders every Markdown file and copies every other non-hidden file
// from the source directory into the output directory. A Markdown file is
// not rendered when an .html file with the same base name sits next to it.
// Unless force is set, pages whose inputs are unchanged since the last build
// and whose output still exists are skipped.
//
// A document that fails to render is recorded in the report and does not
// stop the build; the returned error covers problems with the site itself.
func (b *Builder) Build(force bool) (*Report, error) {
	sourceDir, outputDir := b.cfg.SourceDir, b.cfg.OutputDir

	if ok, _ := afero.DirExists(b.fs, sourceDir); !ok {
		return nil, fmt.Errorf("source directory '%s' not found. Run 'deco init' or create it and add your files", sourceDir)
	}
	if err := b.fs.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	shared, err := sharedDigest(b.fs, b.cfg.Markdown, b.cfg.DataFile, b.cfg.LayoutsDir)
	if err != nil {
		return nil, err
	}
	old := LoadManifest(b.fs, b.cfg.ManifestPath())
	next := Manifest{}

	report := &Report{Failed: map[string]error{}}

	walkErr := afero.Walk(b.fs, sourceDir, func(path string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, walkErr)
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}

		if !strings.EqualFold(filepath.Ext(path), ".md") {
			dst := filepath.Join(outputDir, relPath)
			if err := copyFile(b.fs, path, dst); err != nil {
				b.logger.Error("copy failed", "source", path, "error", err)
				report.Failed[path] = err
				return nil
			}
			report.Copied = append(report.Copied, dst)
			return nil
		}

		base := strings.TrimSuffix(relPath, filepath.Ext(relPath))
		if ok, _ := afero.Exists(b.fs, filepath.Join(sourceDir, base+".html")); ok {
			b.logger.Debug("html file overrides markdown", "source", path)
			return nil
		}
		dst := filepath.Join(outputDir, base+".html")

		src, err := afero.ReadFile(b.fs, path)
		if err != nil {
			b.logger.Error("render failed", "source", path, "error", err)
			report.Failed[path] = err
			return nil
		}
		fp := fingerprint(shared, src)

		if !force && old[dst] == fp {
			if ok, _ := afero.Exists(b.fs, dst); ok {
				next[dst] = fp
				report.Skipped = append(report.Skipped, dst)
				return nil
			}
		}

		out, err := b.renderer.RenderPage(path)
		if err != nil {
			b.logger.Error("render failed", "source", path, "error", err)
			report.Failed[path] = err
			return nil
		}
		if err := render.WriteOutput(b.fs, dst, out); err != nil {
			b.logger.Error("write failed", "source", path, "target", dst, "error", err)
			report.Failed[path] = err
			return nil
		}
		next[dst] = fp
		report.Rendered = append(report.Rendered, dst)
		b.logger.Info("rendered", "source", path, "target", dst)
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("error during content walk: %w", walkErr)
	}

	if err := b.fs.MkdirAll(b.cfg.CacheDir, os.ModePerm); err != nil {
		return report, fmt.Errorf("failed to create cache directory '%s': %w", b.cfg.CacheDir, err)
	}
	if err := next.Save(b.fs, b.cfg.ManifestPath()); err != nil {
		return report, err
	}
	return report, nil
}

// Clean removes everything in the output directory except .gitignore.
func (b *Builder) Clean() error {
	return emptyDir(b.fs, b.cfg.OutputDir)
}

// Flush removes everything in the cache directory except .gitignore.
func (b *Builder) Flush() error {
	return emptyDir(b.fs, b.cfg.CacheDir)
}

func emptyDir(fsys afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read directory '%s': %w", dir, err)
	}
	for _, e := range entries {
		if e.Name() == ".gitignore" {
			continue
		}
		if err := fsys.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove '%s': %w", filepath.Join(dir, e.Name()), err)
		}
	}
	return nil
}

// copyFile copies a single file from srcFile to dstFile, keeping its mode.
func copyFile(fsys afero.Fs, srcFile, dstFile string) error {
	srcF, err := fsys.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	dstDir := filepath.Dir(dstFile)
	if err := fsys.MkdirAll(dstDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	dstF, err := fsys.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}

	if _, err := io.Copy(dstF, srcF); err != nil {
		dstF.Close()
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	if err := dstF.Close(); err != nil {
		return fmt.Errorf("failed to close destination file %s: %w", dstFile, err)
	}

	if srcInfo, err := fsys.Stat(srcFile); err == nil {
		if err := fsys.Chmod(dstFile, srcInfo.Mode()); err != nil {
			return fmt.Errorf("could not set permissions on %s: %w", dstFile, err)
		}
	}
	return nil
}
