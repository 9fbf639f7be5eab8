// Package cli implements the vpypenode command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vpypenode/internal/config"
	"github.com/matzehuels/vpypenode/pkg/buildinfo"
	"github.com/matzehuels/vpypenode/pkg/cache"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/nodes"
	"github.com/matzehuels/vpypenode/pkg/observability"
	"github.com/matzehuels/vpypenode/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "vpypenode"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool

	// stdin is where run reads a document when no input file is given.
	stdin io.Reader
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdin:  os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "vpypenode runs vpype pipelines as typed nodes",
		Long: `vpypenode exposes the vpype vector-graphics tool as typed pipeline nodes:
an SVG processor, an extended processor, a G-code generator and a border remover.
Nodes can be run from the command line, in batches, or through an HTTP server.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.String("vpype", "", "vpype executable")
	pf.String("python", "", "python interpreter for script-based nodes")
	pf.Bool("cache", false, "cache node results")

	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration once per invocation and attaches the logger
// to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader(c.configPath)
	pf := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"vpype.bin":     "vpype",
		"python.bin":    "python",
		"cache.enabled": "cache",
	} {
		if err := loader.BindFlag(key, pf.Lookup(flag)); err != nil {
			return err
		}
	}
	if f := cmd.Flags().Lookup("addr"); f != nil {
		if err := loader.BindFlag("serve.addr", f); err != nil {
			return err
		}
	}
	if f := cmd.Flags().Lookup("jobs"); f != nil {
		if err := loader.BindFlag("batch.jobs", f); err != nil {
			return err
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if level == LogDebug {
		observability.NewLogHooks(c.Logger).Install()
	}
	if used := loader.Used(); used != "" {
		c.Logger.Debug("config loaded", "file", used)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRegistry builds the node registry from the configured executables.
func (c *CLI) newRegistry() *node.Registry {
	return nodes.Default(c.Config.Vpype.Bin, c.Config.Python.Bin, c.Logger)
}

// newRunner creates a pipeline runner with the configured cache backend.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(c.newRegistry(), store, c.newKeyer(), c.Logger)
	r.TTL = c.Config.CacheTTL()
	return r, nil
}

// redisKeyPrefix scopes entries in a Redis database shared with other tools.
const redisKeyPrefix = appName + ":"

// newKeyer returns the cache keyer; Redis keys get the application prefix.
func (c *CLI) newKeyer() cache.Keyer {
	if c.Config.Cache.Enabled && c.Config.Cache.RedisURL != "" {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix)
	}
	return cache.NewDefaultKeyer()
}

// newCache selects the result cache: none unless enabled, Redis when a URL
// is configured, otherwise the file cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.Config.Cache
	if !cfg.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("cache", "backend", "redis")
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache", "backend", "file", "dir", dir)
	return cache.NewFileCache(dir)
}

// cacheDir returns the configured cache directory or the per-user default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
