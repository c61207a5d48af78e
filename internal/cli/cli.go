// Package cli implements the canopy command-line interface.
//
// This package provides commands for resolving diagram geometry from scene
// documents, exporting static diagrams, serving the HTTP API, and managing
// the geometry cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - resolve: Run a geometry pass over a snapshot file
//   - render: Export a scene document as DOT or SVG
//   - inspect: Interactively explore stacking order
//   - serve: Start the HTTP API server
//   - cache: Manage the geometry result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/canopyhq/canopy/pkg/buildinfo"
	"github.com/canopyhq/canopy/pkg/cache"
	"github.com/canopyhq/canopy/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "canopy"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Canopy resolves geometry for nested node-and-edge diagrams",
		Long:         `Canopy is the geometry core for interactive diagrams with nested container scenes: it resolves coordinate offsets through containment chains, assigns recency-based stacking order, and maps edges to concrete anchor points.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file (default: "+filepath.Join("$XDG_CONFIG_HOME", appName, "config.toml")+")")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg *Config, noCache bool) (*pipeline.Runner, error) {
	ca, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ca, nil, c.Logger)
	if cfg.Cache.TTL > 0 {
		r.CacheTTL = cfg.Cache.TTL.Duration()
	}
	return r, nil
}

func newCache(cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == cacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == cacheBackendRedis {
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/canopy/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the diagram store directory using XDG standard
// (~/.local/share/canopy/diagrams).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "diagrams"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "diagrams"), nil
}
