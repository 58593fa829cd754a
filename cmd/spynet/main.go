// Command spynet is the client for a spynet scanning engine: a terminal
// dashboard plus headless and one-shot commands.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rival420/Spynet2/internal/config"
	"github.com/Rival420/Spynet2/internal/engine"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/session"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "spynet",
	Short: "Watch and drive a spynet scanning engine",
	Long: `spynet shows the hosts a scanning engine discovers and sends it
on-demand commands: port scans, banner grabs, vendor lookups, host edits
and scanner control.

Without a subcommand it opens the terminal dashboard.`,
	SilenceUsage: true,
	RunE:         runDash,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to spynet.yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is what every subcommand needs: configuration, a logger, the engine
// client and a reducer built from both.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	closer  io.Closer
	engine  *engine.Client
	reducer session.Reducer
}

// setup loads configuration and wires the engine client. defaultOutput is
// where logs go when logging.output is unset.
func setup(defaultOutput string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Logging.Output == "" {
		cfg.Logging.Output = defaultOutput
	}

	if debug {
		cfg.Logging.Debug = true
	}

	log, closer, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := engine.NewClient(cfg.Engine.URL, cfg.Engine.RequestTimeout, log.WithComponent("engine"))
	if err != nil {
		_ = closer.Close()

		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		closer: closer,
		engine: client,
		reducer: session.Reducer{
			Policy:         cfg.Policy(),
			Layout:         cfg.Layout(),
			CommandTimeout: cfg.Commands.Timeout,
			Log:            log.WithComponent("session"),
		},
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}
