package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/archive"
	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/core"
	"github.com/agenthands/rotcurve/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config  string
	backend string
	verbose bool
}

var rootCmd = &cobra.Command{
	Use:           "rotcurve",
	Short:         "Inspect rotation-curve archives and score them remotely",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "", "config file (TOML or YAML); defaults to $CONFIG_PATH or config/config.toml")
	pf.StringVar(&rootFlags.backend, "backend", "", "compute backend base URL")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(listCmd, showCmd, computeCmd, globalCmd, dwarfsCmd, healthCmd, microCmd)
	rootCmd.Version = version
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *compute.HTTPClient
}

func newApp() (*app, error) {
	_ = godotenv.Load()

	path := rootFlags.config
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if rootFlags.backend != "" {
		cfg.Backend.BaseURL = rootFlags.backend
	}

	logCfg := config.LogConfig{Level: cfg.Log.Level, Format: "console"}
	if rootFlags.verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	client, err := compute.NewClient(cfg.Backend, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, client: client}, nil
}

// open loads src into a fresh session.
func (a *app) open(ctx context.Context, src string) (*core.Session, error) {
	cat, err := core.NewCatalog(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	data, err := archive.Fetch(ctx, src, &http.Client{Timeout: a.cfg.Backend.Timeout.Std()})
	if err != nil {
		return nil, err
	}
	sess := core.NewSession(cat, a.client, core.Options{Logger: a.logger})
	if _, err := sess.LoadArchive(ctx, src, data); err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	return sess, nil
}
