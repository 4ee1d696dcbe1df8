// Package scaffold seeds a new site: the directory skeleton, a data file,
// two layouts, a stylesheet, a welcome page and a Makefile.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Skeleton contains the files written by Init, rooted at "skeleton".
//
//go:embed all:skeleton
var Skeleton embed.FS

const skeletonRoot = "skeleton"

// Init writes the skeleton below root on fsys and returns the paths of the
// files it wrote. Existing files are overwritten.
func Init(fsys afero.Fs, root string) ([]string, error) {
	var written []string

	err := fs.WalkDir(Skeleton, skeletonRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(skeletonRoot, filepath.FromSlash(path))
		if err != nil {
			return err
		}
		outPath := filepath.Join(root, relPath)

		if d.IsDir() {
			if err := fsys.MkdirAll(outPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", outPath, err)
			}
			return nil
		}

		content, err := Skeleton.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := afero.WriteFile(fsys, outPath, content, os.FileMode(0o644)); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		written = append(written, outPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}
