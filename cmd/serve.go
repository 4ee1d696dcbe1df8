package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var serverPort int

const debounceDuration = 500 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command builds the site, serves the output directory over HTTP
and watches the files and layouts directories and the data file, rebuilding
the site when they change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder := newBuilder()
		if _, err := builder.Build(false); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		var buildMu sync.Mutex
		rebuild := func() {
			buildMu.Lock()
			defer buildMu.Unlock()

			logger.Info("rebuilding site")
			report, err := builder.Build(false)
			if err != nil {
				logger.Error("rebuild failed", "error", err)
				return
			}
			logger.Info("site rebuilt", "rendered", len(report.Rendered), "failed", len(report.Failed))
		}
		go watchLoop(watcher, rebuild)

		for _, root := range []string{appConfig.SourceDir, appConfig.LayoutsDir} {
			if err := watchTree(watcher, root); err != nil {
				logger.Warn("not watching directory", "path", root, "error", err)
			}
		}
		// The data file is matched by name in watchLoop; watching its
		// directory survives editors that replace the file.
		if err := watcher.Add(filepath.Dir(appConfig.DataFile)); err != nil {
			logger.Warn("not watching data file", "path", appConfig.DataFile, "error", err)
		}

		addr := fmt.Sprintf(":%d", serverPort)
		logger.Info("serving site", "dir", appConfig.OutputDir, "url", "http://localhost"+addr)

		server := &http.Server{
			Addr:              addr,
			Handler:           staticHandler(appConfig.OutputDir),
			ReadHeaderTimeout: 10 * time.Second,
		}
		if err := server.ListenAndServe(); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	},
}

// watchLoop debounces relevant watcher events into calls to rebuild.
func watchLoop(watcher *fsnotify.Watcher, rebuild func()) {
	var buildTimer *time.Timer
	dataFile := filepath.Clean(appConfig.DataFile)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevant(event, dataFile) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}

			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, rebuild)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether event touches a build input.
func relevant(event fsnotify.Event, dataFile string) bool {
	if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == dataFile {
		return true
	}
	for _, root := range []string{appConfig.SourceDir, appConfig.LayoutsDir} {
		root = filepath.Clean(root)
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error walking directory", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}

// staticHandler serves dir without directory listings or client caching.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
