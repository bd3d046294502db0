package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rembgd/internal/config"
	"rembgd/internal/engine"
	"rembgd/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	var (
		cfgPath  string
		addr     string
		backend  string
		workers  int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the background removal server",
		Long: `Starts the HTTP server. Configuration is resolved in order:
built-in defaults, then the config file (--config), then environment
variables (PORT, MAX_FILE_SIZE, WORKERS, LOG_LEVEL, CORS_ALLOWED_ORIGINS,
REMBGD_*), then command line flags.`,
		Example: `  # Serve on the default port 8000
  rembgd serve

  # Point at an already-running segmentation sidecar
  rembgd serve --backend http --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backend = backend
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (.yaml, .json or .toml)")
	cmd.Flags().StringVar(&addr, "addr", ":8000", "HTTP listen address")
	cmd.Flags().StringVar(&backend, "backend", "spawn", "model adapter: http, spawn or stub")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent inference slots")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

// loadConfig layers the file (when one was given) and the environment on
// top of the built-in defaults. Running without --config is the normal
// env-only mode.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().
		Level(httpapi.ParseLevel(cfg.LogLevel))

	eng, err := engine.New(engine.Config{
		Backend:       cfg.Backend,
		Workers:       cfg.Workers,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.QueueTimeoutSeconds) * time.Second,
		SidecarURL:    cfg.SidecarURL,
		SidecarBin:    cfg.SidecarBin,
		WeightsURL:    cfg.WeightsURL,
		WeightsSHA256: cfg.WeightsSHA256,
		WeightsDir:    cfg.WeightsDir,
		ScratchDir:    cfg.ScratchDir,
	}, logger)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	// Shutdown cancels in-flight handler work through the base context.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetUploadLimits(cfg.MaxFileSize, cfg.AllowedTypes)
	httpapi.SetAllowedOrigins(cfg.CORSOrigins)
	httpapi.Version = version

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(eng)}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// The server is up during load; /health answers degraded until the
	// model is ready and /api/remove-bg returns 503.
	if err := eng.Load(ctx); err != nil {
		logger.Error().Err(err).Msg("model load failed")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = eng.Close()
		return fmt.Errorf("model load: %w", err)
	}
	logger.Info().Msg("model loaded")

	sweeper, err := engine.NewSweeper(cfg.ScratchDir,
		time.Duration(cfg.ScratchTTLMinutes)*time.Minute, cfg.SweepSchedule, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("scratch sweeper disabled")
	} else {
		sweeper.Start()
		defer sweeper.Stop()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
			cancelBase()
			_ = eng.Close()
			return err
		}
		cancelBase()
		if err := eng.Close(); err != nil {
			logger.Warn().Err(err).Msg("engine close")
		}
		logger.Info().Msg("stopped")
		return nil
	case err := <-serverErr:
		_ = eng.Close()
		return err
	}
}
