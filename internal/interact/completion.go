package interact

import (
	"context"
	"time"
)

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Completion resolves once a gesture sequence has finished and its settle
// delay has elapsed. A nil Completion is already resolved.
type Completion struct {
	done chan struct{}
}

// schedule arranges for fn to run after delay and resolves the completion
// once fn returns.
func schedule(delay time.Duration, fn func()) *Completion {
	c := &Completion{done: make(chan struct{})}
	time.AfterFunc(delay, func() {
		defer close(c.done)
		if fn != nil {
			fn()
		}
	})
	return c
}

// resolved returns a completion that is already done.
func resolved() *Completion {
	return &Completion{done: closedCh}
}

// Done returns a channel that is closed when the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	if c == nil || c.done == nil {
		return closedCh
	}
	return c.done
}

// Wait blocks until the completion resolves or ctx is done.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
