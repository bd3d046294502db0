package engine

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "too busy: inference queue is full" }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy() error { return tooBusyError{} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// notLoadedError signals that the model has not finished loading, so the
// HTTP layer can return 503 Service Unavailable instead of 500.
type notLoadedError struct{}

func (notLoadedError) Error() string { return "model is not loaded" }

// ErrNotLoaded constructs a notLoadedError.
func ErrNotLoaded() error { return notLoadedError{} }

// IsNotLoaded reports whether err indicates the model is still loading.
func IsNotLoaded(err error) bool {
	_, ok := err.(notLoadedError)
	return ok
}

// inferenceFailedError wraps a model runtime failure. The cause is kept for
// logging; clients only ever see the generic message.
type inferenceFailedError struct{ cause error }

func (e inferenceFailedError) Error() string { return "inference failed: " + e.cause.Error() }

func (e inferenceFailedError) Unwrap() error { return e.cause }

// ErrInferenceFailed constructs an inferenceFailedError.
func ErrInferenceFailed(cause error) error { return inferenceFailedError{cause: cause} }

// IsInferenceFailed reports whether err originated in the model runtime.
func IsInferenceFailed(err error) bool {
	_, ok := err.(inferenceFailedError)
	return ok
}
