// Package sitedata loads the site-wide variables file.
package sitedata

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/nramenta/deco/internal/model"
)

// Loader reads a YAML data file. The file is optional.
type Loader struct {
	fs     afero.Fs
	path   string
	logger *slog.Logger
}

// NewLoader returns a Loader for path on fs.
func NewLoader(fs afero.Fs, path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fs: fs, path: path, logger: logger}
}

// Load returns the site data. A missing or unreadable file yields an empty
// map; malformed YAML is an error.
func (l *Loader) Load() (model.SiteData, error) {
	raw, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		l.logger.Debug("site data not loaded, using empty data", "path", l.path, "error", err)
		return model.SiteData{}, nil
	}

	var data model.SiteData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("error unmarshalling data file %s: %w", l.path, err)
	}
	if data == nil {
		data = model.SiteData{}
	}
	return data, nil
}
