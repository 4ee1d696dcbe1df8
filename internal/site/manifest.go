package site

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/nramenta/deco/internal/config"
	"github.com/nramenta/deco/internal/render"
)

// Manifest maps output paths to the fingerprint of the inputs they were
// last rendered from.
type Manifest map[string]string

// LoadManifest reads the manifest at path. A missing or corrupt manifest is
// treated as empty: it only costs a full rebuild.
func LoadManifest(fsys afero.Fs, path string) Manifest {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Manifest{}
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil || m == nil {
		return Manifest{}
	}
	return m
}

// Save writes the manifest to path.
func (m Manifest) Save(fsys afero.Fs, path string) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return render.WriteOutput(fsys, path, raw)
}

// fingerprint hashes the shared inputs digest and one source document.
func fingerprint(shared uint64, source []byte) string {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.FormatUint(shared, 16))
	_, _ = d.Write(source)
	return strconv.FormatUint(d.Sum64(), 16)
}

// sharedDigest hashes the inputs every page depends on: the Markdown
// options, the data file and every file below the layouts directory.
func sharedDigest(fsys afero.Fs, md config.MarkdownConfig, dataFile, layoutsDir string) (uint64, error) {
	d := xxhash.New()
	opts, err := yaml.Marshal(md)
	if err != nil {
		return 0, fmt.Errorf("failed to encode markdown options: %w", err)
	}
	_, _ = d.Write(opts)
	if raw, err := afero.ReadFile(fsys, dataFile); err == nil {
		_, _ = d.WriteString(dataFile)
		_, _ = d.Write(raw)
	}

	err = afero.Walk(fsys, layoutsDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		raw, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, _ = d.WriteString(path)
		_, _ = d.Write(raw)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to hash layouts in '%s': %w", layoutsDir, err)
	}
	return d.Sum64(), nil
}
