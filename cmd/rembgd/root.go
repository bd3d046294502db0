package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rembgd",
		Short: "HTTP service that removes image backgrounds",
		Long: `rembgd serves an HTTP API that accepts an uploaded JPEG or PNG and
returns the same picture as a PNG with the background made transparent.

Segmentation is delegated to an external model process; rembgd handles
upload validation, queueing, compositing and the HTTP surface.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSweepCmd())

	return cmd
}
