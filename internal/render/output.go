package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// TargetPath returns where a source document is written in outputDir:
// the source's base name with its .md extension, in any case, replaced by
// .html.
func TargetPath(outputDir, source string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".md") {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(outputDir, base+".html")
}

// WriteOutput writes out to dst through a temporary file in the same
// directory, so dst either keeps its old content or holds all of out.
func WriteOutput(fs afero.Fs, dst string, out []byte) error {
	dir := filepath.Dir(dst)
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in '%s': %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to write '%s': %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to write '%s': %w", dst, err)
	}
	if err := fs.Chmod(tmpName, 0o644); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on '%s': %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, dst); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to move output into place at '%s': %w", dst, err)
	}
	return nil
}
