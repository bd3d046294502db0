package engine

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync/atomic"
)

// Payload is what an adapter returns for one inference call. Exactly one of
// the fields is set: Cutout is a finished PNG with the background already
// transparent; Matte is a PNG-encoded grayscale alpha matte, possibly at the
// model's internal resolution.
type Payload struct {
	Cutout []byte
	Matte  []byte
}

// Adapter abstracts the segmentation model runtime. Implementations are not
// assumed safe for concurrent Remove calls; the Engine serializes access.
type Adapter interface {
	// Load performs the one-time model initialization. It must not be called
	// twice and must leave Loaded reporting true only on success.
	Load(ctx context.Context) error
	// Loaded reports whether Load completed successfully.
	Loaded() bool
	// Remove runs one inference over PNG-encoded input bytes.
	Remove(ctx context.Context, pngData []byte) (Payload, error)
	// Close releases the runtime.
	Close() error
}

// stubAdapter is an in-memory backend for tests and local development. It
// returns a full-opacity matte, so the "cutout" is the input with an alpha
// channel attached. Deterministic by construction.
type stubAdapter struct {
	loaded atomic.Bool
}

func newStubAdapter() *stubAdapter { return &stubAdapter{} }

func (a *stubAdapter) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.loaded.Store(true)
	return nil
}

func (a *stubAdapter) Loaded() bool { return a.loaded.Load() }

func (a *stubAdapter) Remove(ctx context.Context, pngData []byte) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	if !a.loaded.Load() {
		return Payload{}, ErrNotLoaded()
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return Payload{}, err
	}
	matte := image.NewGray(image.Rect(0, 0, cfg.Width, cfg.Height))
	for i := range matte.Pix {
		matte.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, matte); err != nil {
		return Payload{}, err
	}
	return Payload{Matte: buf.Bytes()}, nil
}

func (a *stubAdapter) Close() error {
	a.loaded.Store(false)
	return nil
}
