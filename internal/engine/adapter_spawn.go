package engine

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// spawnAdapter owns a sidecar subprocess: it fetches model weights if needed,
// picks a free port, starts the binary and delegates inference to the inner
// HTTP adapter once the process reports healthy.
type spawnAdapter struct {
	cfg Config
	log zerolog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	inner  *httpAdapter
	exited chan error
}

func newSpawnAdapter(cfg Config, log zerolog.Logger) *spawnAdapter {
	return &spawnAdapter{cfg: cfg, log: log}
}

func (a *spawnAdapter) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.LoadTimeout)
	defer cancel()

	weights := ""
	if a.cfg.WeightsURL != "" {
		var err error
		weights, err = ensureWeights(ctx, a.cfg.WeightsDir, a.cfg.WeightsURL, a.cfg.WeightsSHA256)
		if err != nil {
			return fmt.Errorf("fetch model weights: %w", err)
		}
	}

	port, err := pickFreePort(a.cfg.SidecarHost)
	if err != nil {
		return err
	}

	args := []string{"--host", a.cfg.SidecarHost, "--port", strconv.Itoa(port)}
	if weights != "" {
		args = append(args, "--weights", weights)
	}
	if a.cfg.ScratchDir != "" {
		args = append(args, "--scratch", a.cfg.ScratchDir)
	}

	sidecarLog := a.log.With().Str("component", "sidecar").Logger()
	cmd := exec.Command(a.cfg.SidecarBin, args...)
	cmd.Stdout = sidecarLog
	cmd.Stderr = sidecarLog
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start sidecar %s: %w", a.cfg.SidecarBin, err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	innerCfg := a.cfg
	innerCfg.SidecarURL = fmt.Sprintf("http://%s:%d", a.cfg.SidecarHost, port)
	inner := newHTTPAdapter(innerCfg)

	// Poll health, but bail out immediately if the process dies first.
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		if inner.healthy(ctx) {
			break
		}
		select {
		case err := <-exited:
			return fmt.Errorf("sidecar exited during startup: %v", err)
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			return fmt.Errorf("sidecar did not become healthy: %w", ctx.Err())
		case <-tick.C:
		}
	}
	inner.loaded.Store(true)

	a.mu.Lock()
	a.cmd = cmd
	a.inner = inner
	a.exited = exited
	a.mu.Unlock()
	a.log.Info().Int("port", port).Int("pid", cmd.Process.Pid).Msg("segmentation sidecar started")
	return nil
}

func (a *spawnAdapter) Loaded() bool {
	a.mu.Lock()
	inner := a.inner
	a.mu.Unlock()
	return inner != nil && inner.Loaded()
}

func (a *spawnAdapter) Remove(ctx context.Context, pngData []byte) (Payload, error) {
	a.mu.Lock()
	inner := a.inner
	a.mu.Unlock()
	if inner == nil {
		return Payload{}, ErrNotLoaded()
	}
	return inner.Remove(ctx, pngData)
}

// Close terminates the sidecar: SIGTERM first, SIGKILL after a grace period.
func (a *spawnAdapter) Close() error {
	a.mu.Lock()
	cmd := a.cmd
	inner := a.inner
	exited := a.exited
	a.cmd, a.inner, a.exited = nil, nil, nil
	a.mu.Unlock()

	if inner != nil {
		_ = inner.Close()
	}
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-exited
	}
	return nil
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, fmt.Errorf("pick port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port, nil
}
