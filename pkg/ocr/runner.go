package ocr

import (
	"context"
)

// BoundedRunner runs calls that cannot be interrupted, such as a native
// recognition, on a fixed number of slots. A slot stays taken until the call
// returns, even when the caller has already stopped waiting for it.
type BoundedRunner struct {
	slots chan struct{}
}

// NewBoundedRunner creates a runner with n slots; n < 1 means one
func NewBoundedRunner(n int) *BoundedRunner {
	if n < 1 {
		n = 1
	}
	return &BoundedRunner{slots: make(chan struct{}, n)}
}

type runResult struct {
	text string
	err  error
}

// Run waits for a free slot, starts fn in the background and returns its
// result, or ctx.Err() if ctx ends first.
func (b *BoundedRunner) Run(ctx context.Context, fn func() (string, error)) (string, error) {
	select {
	case b.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	done := make(chan runResult, 1)
	go func() {
		defer func() { <-b.slots }()
		text, err := fn()
		done <- runResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}
