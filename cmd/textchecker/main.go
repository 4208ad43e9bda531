// Command textchecker lints prose through a lint worker: in the browser, on
// the command line, or on files as they change.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"textchecker/internal/config"
	"textchecker/internal/logging"
	"textchecker/internal/version"
)

// errFindings makes the process exit with status 1 without printing anything.
var errFindings = errors.New("lint messages found")

// cli holds what every subcommand needs once flags and config are parsed.
type cli struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "textchecker",
		Short: "Prose linter running in an isolated worker",
		Long: `textchecker lints markdown and plain text with a lint worker that runs
in-process, as a subprocess (--spawn) or behind a websocket (--worker-url).

  textchecker serve               Start the browser editor
  textchecker lint README.md      Lint files
  textchecker fix --write a.md    Apply one fix
  textchecker watch docs/*.md     Re-lint files as they change
  textchecker worker              Serve a worker on stdio`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default is ./.textchecker.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("codec", "json", "worker message codec (json, msgpack)")
	flags.String("worker-url", "", "use the worker served at this websocket URL")
	flags.Bool("spawn", false, "run the worker as a subprocess over stdio")

	_ = config.BindFlags(c.v, flags)

	root.AddCommand(
		c.serveCmd(),
		c.workerCmd(),
		c.lintCmd(),
		c.fixCmd(),
		c.watchCmd(),
		c.metadataCmd(),
		c.versionCmd(),
	)
	return root
}

// load resolves the configuration and the logger before any subcommand runs.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "textchecker:", err)
		}
		os.Exit(1)
	}
}
