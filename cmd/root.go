package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nramenta/deco/internal/config"
	"github.com/nramenta/deco/internal/logging"
)

// version is set at build time via ldflags.
var version = "alpha version"

var (
	cfgFile   string
	logLevel  string
	appConfig          = config.Default()
	appFs     afero.Fs = afero.NewOsFs()
	logger             = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "deco",
	Short: "Deco - a minimal static site generator",
	Long: `Deco turns Markdown files with optional YAML front matter into HTML pages
by applying layout templates. Run 'deco init' to create a new site, then
'deco make <FILE>' to render a single page or 'deco build' to render them all.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	}
	rootCmd.SetVersionTemplate("Deco {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./deco.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetFs(appFs)
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("deco")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DECO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("failed to bind log level flag: %w", err)
	}

	usedFile := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case cfgFile != "" && errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		default:
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		usedFile = v.ConfigFileUsed()
	}

	cfg := config.Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	appConfig = cfg

	logger = logging.New(cmd.ErrOrStderr(), appConfig.LogLevel)
	if usedFile != "" {
		logger.Debug("using config file", "path", usedFile)
	}
	return nil
}
