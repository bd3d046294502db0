package engine

import (
	"time"

	"rembgd/pkg/types"
)

// Health builds the /health body. The process answers regardless of load
// state; the body says whether the model is usable yet.
func (e *Engine) Health() types.HealthResponse {
	if e.Loaded() {
		return types.HealthResponse{Status: "ok", ModelLoaded: true}
	}
	return types.HealthResponse{Status: "degraded", ModelLoaded: false}
}

// Status builds a detailed status response for /status.
func (e *Engine) Status() types.StatusResponse {
	e.mu.RLock()
	state := e.state
	lastErr := e.lastErr
	e.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		State:          string(state),
		ModelLoaded:    e.Loaded(),
		Backend:        e.backend,
		QueueLen:       len(e.queueCh),
		Inflight:       len(e.slotCh),
		MaxQueueDepth:  cap(e.queueCh),
		Workers:        e.workers,
		RequestsTotal:  e.requestsTotal.Load(),
		FailuresTotal:  e.failuresTotal.Load(),
		UptimeSeconds:  int64(now.Sub(e.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		LastError:      lastErr,
	}
}
