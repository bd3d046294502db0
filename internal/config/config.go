package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8000".
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// MaxFileSize is the upload ceiling in bytes enforced by the validator.
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" toml:"max_file_size"`
	// Workers is the number of concurrent inference slots.
	Workers int `json:"workers" yaml:"workers" toml:"workers"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// AllowedTypes is the upload media type allow-list.
	AllowedTypes []string `json:"allowed_types" yaml:"allowed_types" toml:"allowed_types"`
	// CORSOrigins is the CORS origin allow-list. ["*"] is permissive and
	// meant for development only.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	// MaxQueueDepth bounds the inference queue; QueueTimeoutSeconds bounds
	// how long a request may wait in it.
	MaxQueueDepth       int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	QueueTimeoutSeconds int `json:"queue_timeout_seconds" yaml:"queue_timeout_seconds" toml:"queue_timeout_seconds"`
	// ShutdownTimeoutSeconds bounds the drain of in-flight requests.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`

	// Backend selects the model adapter: http, spawn or stub.
	Backend string `json:"backend" yaml:"backend" toml:"backend"`
	// SidecarURL is the base URL of a running segmentation sidecar (http backend).
	SidecarURL string `json:"sidecar_url" yaml:"sidecar_url" toml:"sidecar_url"`
	// SidecarBin is the sidecar binary to spawn (spawn backend).
	SidecarBin string `json:"sidecar_bin" yaml:"sidecar_bin" toml:"sidecar_bin"`
	// WeightsURL/WeightsSHA256/WeightsDir control the one-time weight fetch.
	WeightsURL    string `json:"weights_url" yaml:"weights_url" toml:"weights_url"`
	WeightsSHA256 string `json:"weights_sha256" yaml:"weights_sha256" toml:"weights_sha256"`
	WeightsDir    string `json:"weights_dir" yaml:"weights_dir" toml:"weights_dir"`
	// ScratchDir is the sidecar spool directory, swept on SweepSchedule for
	// files older than ScratchTTLMinutes.
	ScratchDir        string `json:"scratch_dir" yaml:"scratch_dir" toml:"scratch_dir"`
	ScratchTTLMinutes int    `json:"scratch_ttl_minutes" yaml:"scratch_ttl_minutes" toml:"scratch_ttl_minutes"`
	SweepSchedule     string `json:"sweep_schedule" yaml:"sweep_schedule" toml:"sweep_schedule"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:                   ":8000",
		MaxFileSize:            10 * 1024 * 1024,
		Workers:                4,
		LogLevel:               "info",
		AllowedTypes:           []string{"image/jpeg", "image/png"},
		CORSOrigins:            []string{"*"},
		MaxQueueDepth:          32,
		QueueTimeoutSeconds:    30,
		ShutdownTimeoutSeconds: 10,
		Backend:                "spawn",
		SidecarBin:             "u2net-server",
		WeightsDir:             "~/.cache/rembgd/weights",
		ScratchDir:             os.TempDir() + "/rembgd",
		ScratchTTLMinutes:      60,
		SweepSchedule:          "@every 10m",
	}
}

// Load reads a configuration file based on its extension and overlays it on
// the defaults. Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
