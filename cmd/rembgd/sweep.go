package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rembgd/internal/engine"
)

func newSweepCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stale files from the sidecar scratch directory once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
			s, err := engine.NewSweeper(cfg.ScratchDir,
				time.Duration(cfg.ScratchTTLMinutes)*time.Minute, cfg.SweepSchedule, logger)
			if err != nil {
				return err
			}
			s.Sweep()
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (.yaml, .json or .toml)")

	return cmd
}
