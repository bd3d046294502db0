package engine

import "time"

// Backend selects the adapter implementation.
const (
	BackendHTTP  = "http"
	BackendSpawn = "spawn"
	BackendStub  = "stub"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultWorkers       = 4
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultLoadTimeout   = 2 * time.Minute
	defaultRemoveTimeout = 60 * time.Second
)

// Config encapsulates all tunables for Engine construction.
type Config struct {
	// Backend selects the model adapter: http, spawn or stub.
	Backend string
	// Workers is the number of concurrent inference slots. The model runtime
	// is not assumed reentrant; this is the real throughput ceiling.
	Workers int
	// MaxQueueDepth bounds the FIFO queue in front of the slots.
	MaxQueueDepth int
	// MaxWait bounds how long an admitted request may sit in the queue.
	MaxWait time.Duration

	// SidecarURL is the base URL of a running segmentation sidecar (http backend).
	SidecarURL string
	// SidecarBin is the sidecar binary to spawn (spawn backend).
	SidecarBin string
	// SidecarHost is the interface the spawned sidecar binds to.
	SidecarHost string
	// LoadTimeout bounds model load, including weight fetch and sidecar startup.
	LoadTimeout time.Duration
	// RemoveTimeout bounds a single inference call against the sidecar.
	RemoveTimeout time.Duration

	// WeightsURL is the one-time download source for model weights (spawn backend).
	WeightsURL string
	// WeightsSHA256 is the expected hex digest of the weight file; empty skips verification.
	WeightsSHA256 string
	// WeightsDir is where fetched weights are stored.
	WeightsDir string
	// ScratchDir is handed to the spawned sidecar for its temporary files.
	ScratchDir string
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendHTTP
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = defaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = defaultLoadTimeout
	}
	if c.RemoveTimeout <= 0 {
		c.RemoveTimeout = defaultRemoveTimeout
	}
	if c.SidecarHost == "" {
		c.SidecarHost = "127.0.0.1"
	}
	return c
}
