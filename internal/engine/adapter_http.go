package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// httpAdapter talks to an already-running segmentation sidecar over HTTP.
// Protocol: GET /health for liveness, POST /api/remove with a multipart
// "file" field returning image/png. The sidecar signals matte-vs-cutout
// output via the X-Rembgd-Output response header (default cutout).
type httpAdapter struct {
	baseURL       string
	cli           *http.Client
	loadTimeout   time.Duration
	removeTimeout time.Duration
	loaded        atomic.Bool
}

func newHTTPAdapter(cfg Config) *httpAdapter {
	// Timeout stays 0 on the client: every call carries a context deadline.
	return &httpAdapter{
		baseURL:       strings.TrimRight(cfg.SidecarURL, "/"),
		cli:           &http.Client{Timeout: 0},
		loadTimeout:   cfg.LoadTimeout,
		removeTimeout: cfg.RemoveTimeout,
	}
}

// Load polls the sidecar health endpoint until it answers or the deadline
// expires. The sidecar loads its weights during startup, so a ready health
// check means the model is loaded.
func (a *httpAdapter) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.loadTimeout)
	defer cancel()
	for {
		if a.healthy(ctx) {
			a.loaded.Store(true)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("segmentation sidecar at %s not healthy: %w", a.baseURL, ctx.Err())
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (a *httpAdapter) healthy(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.cli.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (a *httpAdapter) Loaded() bool { return a.loaded.Load() }

func (a *httpAdapter) Remove(ctx context.Context, pngData []byte) (Payload, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "input.png")
	if err != nil {
		return Payload{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(pngData); err != nil {
		return Payload{}, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Payload{}, fmt.Errorf("close form: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.removeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, a.baseURL+"/api/remove", body)
	if err != nil {
		return Payload{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.cli.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("sidecar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Payload{}, fmt.Errorf("sidecar returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("read sidecar response: %w", err)
	}
	if len(out) == 0 {
		return Payload{}, fmt.Errorf("sidecar returned an empty body")
	}
	if strings.EqualFold(resp.Header.Get("X-Rembgd-Output"), "matte") {
		return Payload{Matte: out}, nil
	}
	return Payload{Cutout: out}, nil
}

func (a *httpAdapter) Close() error {
	a.loaded.Store(false)
	return nil
}
