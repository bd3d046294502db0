// Package engine owns the lifecycle of the segmentation model and the
// admission control in front of it. It is structured into small files by
// concern:
//
//   - engine.go: core Engine type, constructor, lifecycle (Load/Close).
//   - config.go: Config and package defaults; New applies defaults.
//   - errors.go: error types and helpers (IsTooBusy, IsNotLoaded,
//     IsInferenceFailed).
//   - admission.go: bounded FIFO queue and in-flight slot acquisition.
//   - remove.go: RemoveBackground entry point and result assembly.
//   - status.go: Health/Status reporting helpers.
//   - adapter.go: Adapter interface and the in-memory stub backend.
//   - adapter_http.go: HTTP client for a running segmentation sidecar.
//   - adapter_spawn.go: spawns the sidecar binary and manages its process.
//   - weights.go: one-time model weight fetch with checksum verification.
//   - scratch.go: scheduled sweeper for the sidecar scratch directory.
//
// The segmentation model itself is opaque to this package: an Adapter turns
// PNG bytes into either a finished cutout or an alpha matte, and the engine
// never assumes the runtime is safe to call concurrently. All concurrency
// limits are enforced here, in front of the adapter.
//
// External packages should use public methods only (New, Load, Ready,
// RemoveBackground, Health, Status, Close). Internal types are subject to
// change.
package engine
