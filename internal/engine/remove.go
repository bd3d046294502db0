package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/segmentio/ksuid"

	"rembgd/internal/imaging"
)

// Request is a background-removal request. Source must come from the
// validator; the engine never re-checks size or type.
type Request struct {
	Source   *imaging.SourceImage
	Filename string
}

// Result is one finished removal: a PNG with an alpha channel, dimensions
// matching the input.
type Result struct {
	ID     string
	PNG    []byte
	Width  int
	Height int
}

// RemoveBackground runs one validated upload through the model. Admission is
// FIFO with a bounded queue; the call is deterministic for byte-identical
// input against the same model version.
func (e *Engine) RemoveBackground(ctx context.Context, req Request) (*Result, error) {
	if req.Source == nil || len(req.Source.Data) == 0 {
		return nil, errors.New("empty request source")
	}
	if !e.Loaded() {
		return nil, ErrNotLoaded()
	}

	release, err := e.beginInference(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	e.requestsTotal.Add(1)

	id := ksuid.New().String()
	start := time.Now()

	src, err := imaging.Decode(req.Source.Data)
	if err != nil {
		// Validated header but undecodable body (e.g. truncated JPEG): the
		// runtime boundary owns this failure, not the client.
		return nil, e.fail(ErrInferenceFailed(err))
	}

	// Adapters speak PNG; pass the original bytes through when they already
	// are PNG, re-encode otherwise.
	input := req.Source.Data
	if req.Source.Format != "png" {
		input, err = imaging.EncodePNG(src)
		if err != nil {
			return nil, e.fail(ErrInferenceFailed(err))
		}
	}

	payload, err := e.adapter.Remove(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.fail(ErrInferenceFailed(err))
	}

	out, err := e.assemble(src, req.Source, payload)
	if err != nil {
		return nil, e.fail(err)
	}

	e.log.Info().
		Str("request_id", id).
		Str("format", req.Source.Format).
		Int("width", req.Source.Width).
		Int("height", req.Source.Height).
		Int("bytes_in", len(req.Source.Data)).
		Int("bytes_out", len(out)).
		Dur("dur", time.Since(start)).
		Msg("background removed")

	return &Result{ID: id, PNG: out, Width: req.Source.Width, Height: req.Source.Height}, nil
}

// assemble turns an adapter payload into the final PNG, guaranteeing output
// dimensions equal input dimensions.
func (e *Engine) assemble(src image.Image, meta *imaging.SourceImage, payload Payload) ([]byte, error) {
	switch {
	case payload.Matte != nil:
		matte, err := imaging.Decode(payload.Matte)
		if err != nil {
			return nil, ErrInferenceFailed(fmt.Errorf("decode matte: %w", err))
		}
		return imaging.EncodePNG(imaging.Composite(src, matte))
	case payload.Cutout != nil:
		cut, err := imaging.Decode(payload.Cutout)
		if err != nil {
			return nil, ErrInferenceFailed(fmt.Errorf("decode cutout: %w", err))
		}
		b := cut.Bounds()
		if b.Dx() == meta.Width && b.Dy() == meta.Height && imaging.HasAlpha(cut) {
			// Already a PNG cutout at the right size; pass through untouched.
			return payload.Cutout, nil
		}
		return imaging.EncodePNG(imaging.ScaleTo(cut, meta.Width, meta.Height))
	default:
		return nil, ErrInferenceFailed(errors.New("adapter returned no payload"))
	}
}

func (e *Engine) fail(err error) error {
	e.failuresTotal.Add(1)
	e.mu.Lock()
	e.lastErr = err.Error()
	e.mu.Unlock()
	return err
}
