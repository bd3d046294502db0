package engine

import (
	"context"
	"time"
)

// beginInference reserves a queue slot and then an in-flight slot.
// Returns a release func to be deferred.
func (e *Engine) beginInference(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	// Try to reserve a queue slot with timeout
	timer := time.NewTimer(e.maxWait)
	defer timer.Stop()
	select {
	case e.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, ErrTooBusy()
	}

	// Wait to acquire an in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-e.queueCh
		}
	}()
	// Check for cancellation again before blocking on a slot
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(e.maxWait)
	defer timer2.Stop()
	select {
	case e.slotCh <- struct{}{}:
		acquired = true
		return func() { <-e.slotCh; <-e.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, ErrTooBusy()
	}
}
