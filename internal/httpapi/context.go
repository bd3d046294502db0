package httpapi

import (
	"context"
)

// serverBaseCtx is canceled when the process begins draining, so in-flight
// removal work stops even if the client is still connected.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-lifetime context handlers derive from.
// A nil ctx resets to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts ties a request context to the server lifetime: the result is
// done as soon as either input is. Callers must invoke cancel when the
// handler returns so the watcher goroutine exits.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
