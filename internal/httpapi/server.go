package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rembgd/internal/engine"
	"rembgd/internal/imaging"
	"rembgd/pkg/types"
)

// Version is reported on the root endpoint. Overridden at build time.
var Version = "dev"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	RemoveBackground(ctx context.Context, req engine.Request) (*engine.Result, error)
	Health() types.HealthResponse
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the HTTP router for the service.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints; PNG responses are left alone.
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(corsOptions))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", handleRoot)
	r.Post("/api/remove-bg", handleRemoveBG(svc))
	r.Get("/health", handleHealth(svc))
	r.Get("/status", handleStatus(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	mountDocs(r)

	return r
}

// handleRoot godoc
// @Summary Service info
// @Description Returns the service name, version and the available endpoints.
// @Produce json
// @Success 200 {object} types.APIInfo
// @Router / [get]
func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIInfo{
		Name:    "rembgd",
		Version: Version,
		Status:  "running",
		Endpoints: map[string]string{
			"remove_background": "POST /api/remove-bg",
			"health":            "GET /health",
			"status":            "GET /status",
			"metrics":           "GET /metrics",
			"docs":              "GET /docs",
			"redoc":             "GET /redoc",
		},
	})
}

// handleHealth godoc
// @Summary Health probe
// @Description Always returns 200; model readiness is reported in the body.
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Router /health [get]
func handleHealth(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Health())
	}
}

// handleStatus godoc
// @Summary Runtime status snapshot
// @Produce json
// @Success 200 {object} types.StatusResponse
// @Router /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}
}

// handleRemoveBG godoc
// @Summary Remove the background from an uploaded image
// @Description Accepts a multipart upload under the "file" field and returns
// @Description a PNG with the background made transparent.
// @Accept mpfd
// @Produce png
// @Param file formData file true "image to process (JPEG or PNG)"
// @Success 200 {file} binary "PNG with alpha channel"
// @Failure 400 {object} types.ErrorResponse "invalid upload"
// @Failure 429 {object} types.ErrorResponse "queue full"
// @Failure 503 {object} types.ErrorResponse "model not loaded"
// @Failure 500 {object} types.ErrorResponse "processing failed"
// @Router /api/remove-bg [post]
func handleRemoveBG(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "multipart/form-data") {
			writeJSONError(w, http.StatusBadRequest, "Content-Type must be multipart/form-data")
			return
		}
		// Cap the whole body; a file within the limit still fits with the
		// multipart overhead included.
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)

		file, header, err := r.FormFile("file")
		if err != nil {
			// Some clients name the part "image"; accept that too.
			file, header, err = r.FormFile("image")
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeRejection(w, imaging.Rejected(imaging.ReasonTooLarge,
					fmt.Sprintf("upload exceeds limit of %d bytes", maxUploadBytes)))
				return
			}
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
				Error:  `multipart field "file" is required`,
				Reason: "missing_file",
				Code:   http.StatusBadRequest,
			})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeRejection(w, imaging.Rejected(imaging.ReasonTooLarge,
					fmt.Sprintf("upload exceeds limit of %d bytes", maxUploadBytes)))
				return
			}
			writeJSONError(w, http.StatusBadRequest, "failed to read upload")
			return
		}

		src, err := imaging.Validate(data, header.Header.Get("Content-Type"), uploadLimits())
		if err != nil {
			if ve, ok := imaging.AsValidationError(err); ok {
				writeRejection(w, ve)
				return
			}
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		uploadBytes.Observe(float64(len(data)))

		start := time.Now()
		rid := middleware.GetReqID(r.Context())
		zlog.WithLevel(requestLogLevel()).
			Str("request_id", rid).
			Str("filename", header.Filename).
			Str("format", src.Format).
			Int("bytes", len(data)).
			Msg("remove-bg start")

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.RemoveBackground(joinedCtx, engine.Request{Source: src, Filename: header.Filename})
		if err != nil {
			// Client disconnect or shutdown: nothing useful to write.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := mapEngineError(err)
			if status == http.StatusTooManyRequests {
				backpressureTotal.WithLabelValues("queue_full").Inc()
			}
			msg := err.Error()
			if status == http.StatusInternalServerError {
				// Do not leak adapter internals to clients.
				msg = "failed to process image"
			}
			writeJSONError(w, status, msg)
			zlog.WithLevel(requestLogLevel()).
				Str("request_id", rid).
				Int("status", status).
				Dur("dur", time.Since(start)).
				Err(err).
				Msg("remove-bg end")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputName(header.Filename, res.ID)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.PNG)

		zlog.WithLevel(requestLogLevel()).
			Str("request_id", rid).
			Int("status", http.StatusOK).
			Int("width", res.Width).
			Int("height", res.Height).
			Int("png_bytes", len(res.PNG)).
			Dur("dur", time.Since(start)).
			Msg("remove-bg end")
	}
}

// mapEngineError translates well-known engine errors to HTTP status codes.
func mapEngineError(err error) int {
	switch {
	case engine.IsNotLoaded(err):
		return http.StatusServiceUnavailable
	case engine.IsTooBusy(err):
		return http.StatusTooManyRequests
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// outputName derives the download filename from the upload, always with a
// .png extension. Falls back to the request id when the client sent no name.
func outputName(uploaded, id string) string {
	base := filepath.Base(strings.TrimSpace(uploaded))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		base = id
	}
	return "nobg_" + base + ".png"
}
