package main

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("PORT", "9123")
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\"): %v", err)
	}
	if cfg.Addr != ":9123" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.Workers != 4 || cfg.MaxFileSize != 10*1<<20 {
		t.Fatalf("defaults not applied: workers=%d max=%d", cfg.Workers, cfg.MaxFileSize)
	}
}

func TestLoadConfigBadPathStillErrors(t *testing.T) {
	if _, err := loadConfig("/no/such/config.yaml"); err == nil {
		t.Fatal("expected error for unreadable config file")
	}
}

func TestServeWithoutConfigFile(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	root := newRootCmd()
	root.SetArgs([]string{"serve", "--backend", "stub", "--addr", "127.0.0.1:0"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	// Serves until the context expires, then drains; any config-resolution
	// failure surfaces here before the listener ever binds.
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve without --config: %v", err)
	}
}
