package jobs

import "context"

// Pool bounds the number of concurrently running blocking calls, such as
// spreadsheet and drive I/O that cannot be cancelled mid-flight.
type Pool struct {
	slots chan struct{}
}

// NewPool builds a pool with the given number of slots.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do runs fn on a free slot. Cancelling ctx interrupts the wait for a slot
// and the wait for the result; the in-flight call itself keeps running until
// it returns on its own, after which the slot is released.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.slots <- struct{}{}:
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
		<-p.slots
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
