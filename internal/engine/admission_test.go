package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingAdapter holds every Remove call until released.
type blockingAdapter struct {
	release chan struct{}
	entered chan struct{}
}

func (a *blockingAdapter) Load(ctx context.Context) error { return nil }
func (a *blockingAdapter) Loaded() bool                   { return true }
func (a *blockingAdapter) Remove(ctx context.Context, pngData []byte) (Payload, error) {
	a.entered <- struct{}{}
	select {
	case <-a.release:
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	}
	return Payload{}, errors.New("blocking adapter released")
}
func (a *blockingAdapter) Close() error { return nil }

func TestBeginInference_ReleaseFreesSlot(t *testing.T) {
	e := stubEngine(t, Config{Workers: 1, MaxQueueDepth: 2})
	release, err := e.beginInference(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, len(e.slotCh))
	release()
	assert.Equal(t, 0, len(e.slotCh))
	assert.Equal(t, 0, len(e.queueCh))
}

func TestBeginInference_CanceledContext(t *testing.T) {
	e := stubEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.beginInference(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBeginInference_QueueOverflowIsTooBusy(t *testing.T) {
	e := stubEngine(t, Config{Workers: 1, MaxQueueDepth: 1, MaxWait: 30 * time.Millisecond})

	// Occupy the single slot (and therefore the single queue entry).
	release, err := e.beginInference(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = e.beginInference(context.Background())
	require.Error(t, err)
	assert.True(t, IsTooBusy(err))
}

func TestRemoveBackground_BackpressureUnderSaturation(t *testing.T) {
	e := stubEngine(t, Config{Workers: 1, MaxQueueDepth: 1, MaxWait: 50 * time.Millisecond})
	adapter := &blockingAdapter{release: make(chan struct{}), entered: make(chan struct{}, 8)}
	e.adapter = adapter
	e.mu.Lock()
	e.state = StateReady
	e.mu.Unlock()

	src := pngSource(t, 4, 4)

	var wg sync.WaitGroup
	first := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := e.RemoveBackground(context.Background(), Request{Source: src})
		first <- err
	}()
	<-adapter.entered // the first call is now inside the adapter, slot held

	_, err := e.RemoveBackground(context.Background(), Request{Source: src})
	require.Error(t, err)
	assert.True(t, IsTooBusy(err), "saturated engine must reject with backpressure, got %v", err)

	close(adapter.release)
	wg.Wait()
	<-first
}
