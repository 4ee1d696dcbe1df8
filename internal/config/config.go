package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the tool settings. Every path is relative to the site root.
type Config struct {
	SourceDir  string         `mapstructure:"sourceDir"`
	LayoutsDir string         `mapstructure:"layoutsDir"`
	CacheDir   string         `mapstructure:"cacheDir"`
	OutputDir  string         `mapstructure:"outputDir"`
	DataFile   string         `mapstructure:"dataFile"`
	LogLevel   string         `mapstructure:"logLevel"`
	Markdown   MarkdownConfig `mapstructure:"markdown"`
}

// MarkdownConfig selects the optional Markdown features.
type MarkdownConfig struct {
	HardWraps      bool   `mapstructure:"hardWraps"`
	Typographer    bool   `mapstructure:"typographer"`
	HighlightStyle string `mapstructure:"highlightStyle"`
}

// SetDefaults registers the default layout of a deco site on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sourceDir", "files")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("cacheDir", "cache")
	v.SetDefault("outputDir", "site")
	v.SetDefault("dataFile", "data.yml")
	v.SetDefault("logLevel", "info")
	v.SetDefault("markdown.hardWraps", false)
	v.SetDefault("markdown.typographer", false)
	v.SetDefault("markdown.highlightStyle", "")
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		SourceDir:  "files",
		LayoutsDir: "layouts",
		CacheDir:   "cache",
		OutputDir:  "site",
		DataFile:   "data.yml",
		LogLevel:   "info",
	}
}

// ManifestPath is the incremental build manifest inside the cache directory.
func (c Config) ManifestPath() string {
	return filepath.Join(c.CacheDir, "manifest.yml")
}
