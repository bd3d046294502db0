package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays recognized environment variables onto the config.
// The deployment-facing knobs keep their bare names (PORT, MAX_FILE_SIZE,
// WORKERS, LOG_LEVEL); everything else is namespaced under REMBGD_.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		c.Addr = ":" + strconv.Itoa(p)
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid MAX_FILE_SIZE %q", v)
		}
		c.MaxFileSize = n
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid WORKERS %q", v)
		}
		c.Workers = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSOrigins = splitCSV(v)
	}

	if v := os.Getenv("REMBGD_ALLOWED_TYPES"); v != "" {
		c.AllowedTypes = splitCSV(v)
	}
	if v := os.Getenv("REMBGD_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("REMBGD_SIDECAR_URL"); v != "" {
		c.SidecarURL = v
	}
	if v := os.Getenv("REMBGD_SIDECAR_BIN"); v != "" {
		c.SidecarBin = v
	}
	if v := os.Getenv("REMBGD_WEIGHTS_URL"); v != "" {
		c.WeightsURL = v
	}
	if v := os.Getenv("REMBGD_WEIGHTS_SHA256"); v != "" {
		c.WeightsSHA256 = v
	}
	if v := os.Getenv("REMBGD_WEIGHTS_DIR"); v != "" {
		c.WeightsDir = v
	}
	if v := os.Getenv("REMBGD_SCRATCH_DIR"); v != "" {
		c.ScratchDir = v
	}
	if v := os.Getenv("REMBGD_QUEUE_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid REMBGD_QUEUE_DEPTH %q", v)
		}
		c.MaxQueueDepth = n
	}
	return nil
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
