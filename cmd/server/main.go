package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/driver"
	"github.com/agenthands/rotcurve/internal/logging"
	"github.com/agenthands/rotcurve/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := compute.NewClient(cfg.Backend, logger)
	if err != nil {
		logger.Fatal("failed to initialize compute client", zap.Error(err))
	}

	deps := server.Deps{Client: client, Logger: logger}
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph, logger)
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer d.Close(context.Background())
			if err := d.BuildIndices(ctx); err != nil {
				logger.Warn("failed to build indices", zap.Error(err))
			}
			deps.Recorder = driver.NewRecorder(d)
		}
	}

	srv := server.NewServer(cfg, deps)
	if len(cfg.Archive.Autoload) > 0 {
		if sess, err := srv.Preload(ctx); err != nil {
			logger.Warn("autoload failed", zap.Error(err))
		} else {
			logger.Info("preloaded session", zap.String("id", sess.ID), zap.Int("galaxies", sess.Catalog().Len()))
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("backend", cfg.Backend.BaseURL))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
