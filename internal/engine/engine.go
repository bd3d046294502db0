package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// State represents the lifecycle state of the engine.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Engine is the process-wide handle to the segmentation model. Exactly one
// instance exists per process; it is created before traffic is served and
// closed on shutdown.
type Engine struct {
	mu      sync.RWMutex
	state   State
	lastErr string

	adapter Adapter
	backend string
	workers int
	maxWait time.Duration

	// Admission primitives: queueCh bounds waiting requests, slotCh bounds
	// concurrent adapter calls.
	queueCh chan struct{}
	slotCh  chan struct{}

	startTime     time.Time
	requestsTotal atomic.Uint64
	failuresTotal atomic.Uint64

	log zerolog.Logger
}

// New constructs an Engine from Config, applying package defaults.
func New(cfg Config, log zerolog.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()
	e := &Engine{
		state:     StateLoading,
		backend:   cfg.Backend,
		workers:   cfg.Workers,
		maxWait:   cfg.MaxWait,
		queueCh:   make(chan struct{}, cfg.MaxQueueDepth),
		slotCh:    make(chan struct{}, cfg.Workers),
		startTime: time.Now(),
		log:       log,
	}
	switch cfg.Backend {
	case BackendHTTP:
		if cfg.SidecarURL == "" {
			return nil, fmt.Errorf("http backend requires a sidecar URL")
		}
		e.adapter = newHTTPAdapter(cfg)
	case BackendSpawn:
		if cfg.SidecarBin == "" {
			return nil, fmt.Errorf("spawn backend requires a sidecar binary")
		}
		e.adapter = newSpawnAdapter(cfg, log)
	case BackendStub:
		e.adapter = newStubAdapter()
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return e, nil
}

// Load initializes the model adapter. It runs exactly once at bootstrap;
// a returned error is fatal to the process, which must not serve removal
// requests without a loaded model.
func (e *Engine) Load(ctx context.Context) error {
	start := time.Now()
	e.log.Info().Str("backend", e.backend).Msg("loading segmentation model")
	if err := e.adapter.Load(ctx); err != nil {
		e.mu.Lock()
		e.state = StateError
		e.lastErr = err.Error()
		e.mu.Unlock()
		return err
	}
	e.mu.Lock()
	e.state = StateReady
	e.lastErr = ""
	e.mu.Unlock()
	e.log.Info().Dur("dur", time.Since(start)).Msg("segmentation model loaded")
	return nil
}

// Ready reports whether the engine can serve removal requests.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == StateReady && e.adapter.Loaded()
}

// Loaded reports whether the model finished loading.
func (e *Engine) Loaded() bool { return e.adapter.Loaded() }

// Close releases the model adapter.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.state = StateLoading
	e.mu.Unlock()
	return e.adapter.Close()
}
