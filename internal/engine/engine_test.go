package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rembgd/internal/imaging"
)

func testLimits() imaging.Limits {
	return imaging.Limits{MaxBytes: 10 << 20, AllowedTypes: []string{"image/jpeg", "image/png"}}
}

func pngSource(t *testing.T, w, h int) *imaging.SourceImage {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	src, err := imaging.Validate(buf.Bytes(), "image/png", testLimits())
	require.NoError(t, err)
	return src
}

func jpegSource(t *testing.T, w, h int) *imaging.SourceImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	src, err := imaging.Validate(buf.Bytes(), "image/jpeg", testLimits())
	require.NoError(t, err)
	return src
}

func stubEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Backend = BackendStub
	e, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "onnx"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_HTTPRequiresURL(t *testing.T) {
	_, err := New(Config{Backend: BackendHTTP}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_SpawnRequiresBinary(t *testing.T) {
	_, err := New(Config{Backend: BackendSpawn}, zerolog.Nop())
	assert.Error(t, err)
}

func TestEngine_LifecycleAndHealth(t *testing.T) {
	e := stubEngine(t, Config{})

	assert.False(t, e.Ready())
	assert.False(t, e.Loaded())
	h := e.Health()
	assert.Equal(t, "degraded", h.Status)
	assert.False(t, h.ModelLoaded)

	require.NoError(t, e.Load(context.Background()))
	assert.True(t, e.Ready())
	h = e.Health()
	assert.Equal(t, "ok", h.Status)
	assert.True(t, h.ModelLoaded)

	require.NoError(t, e.Close())
	assert.False(t, e.Ready())
}

func TestEngine_StatusSnapshot(t *testing.T) {
	e := stubEngine(t, Config{Workers: 2, MaxQueueDepth: 8})
	require.NoError(t, e.Load(context.Background()))

	st := e.Status()
	assert.Equal(t, "ready", st.State)
	assert.True(t, st.ModelLoaded)
	assert.Equal(t, BackendStub, st.Backend)
	assert.Equal(t, 2, st.Workers)
	assert.Equal(t, 8, st.MaxQueueDepth)
	assert.Equal(t, 0, st.Inflight)
	assert.NotZero(t, st.ServerTimeUnix)
}

func TestEngine_LoadFailureSetsErrorState(t *testing.T) {
	e := stubEngine(t, Config{})
	e.adapter = &failingAdapter{loadErr: assert.AnError}
	require.Error(t, e.Load(context.Background()))
	st := e.Status()
	assert.Equal(t, "error", st.State)
	assert.NotEmpty(t, st.LastError)
	assert.False(t, e.Ready())
}

// failingAdapter lets tests force load/inference failures.
type failingAdapter struct {
	loadErr   error
	removeErr error
	loaded    bool
}

func (a *failingAdapter) Load(ctx context.Context) error {
	if a.loadErr != nil {
		return a.loadErr
	}
	a.loaded = true
	return nil
}
func (a *failingAdapter) Loaded() bool { return a.loaded }
func (a *failingAdapter) Remove(ctx context.Context, pngData []byte) (Payload, error) {
	return Payload{}, a.removeErr
}
func (a *failingAdapter) Close() error { return nil }
