package types

// HealthResponse is returned by GET /health. The endpoint answers 200 as long
// as the process is alive; Status reflects whether the model finished loading.
type HealthResponse struct {
	// Overall service status: "ok" when the model is loaded, "degraded" while loading.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Whether the segmentation model finished loading.
	// example: true
	ModelLoaded bool `json:"modelLoaded" example:"true"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: file too large
	Error string `json:"error" example:"file too large"`
	// Machine-readable rejection reason on 400 responses.
	// example: too_large
	Reason string `json:"reason,omitempty" example:"too_large"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall engine state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Whether the segmentation model finished loading.
	// example: true
	ModelLoaded bool `json:"model_loaded" example:"true"`
	// Active model backend (http, spawn, stub).
	// example: spawn
	Backend string `json:"backend" example:"spawn"`
	// Current queue length for incoming removal requests.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of in-flight inference calls.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Number of concurrent inference slots.
	// example: 4
	Workers int `json:"workers" example:"4"`
	// Total removal requests admitted by the engine.
	// example: 120
	RequestsTotal uint64 `json:"requests_total" example:"120"`
	// Total removal requests that failed inside the engine.
	// example: 2
	FailuresTotal uint64 `json:"failures_total" example:"2"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Last error observed by the engine (if any).
	LastError string `json:"last_error,omitempty"`
}

// APIInfo is returned by GET / and describes the service surface.
type APIInfo struct {
	// Service name.
	// example: rembgd
	Name string `json:"name" example:"rembgd"`
	// Service version.
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
	// Running status.
	// example: running
	Status string `json:"status" example:"running"`
	// Map of operation name to path.
	Endpoints map[string]string `json:"endpoints"`
}
