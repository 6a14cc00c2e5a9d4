package jobs

import "context"

// runSlots bounds how many meetings the dispatcher executes at once. A job
// takes a slot before it is claimed and gives it back when its run ends.
type runSlots chan struct{}

func newRunSlots(n int) runSlots {
	return make(runSlots, n)
}

// take waits for a free slot. It fails only when ctx is done, which means
// the dispatcher is shutting down.
func (s runSlots) take(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s runSlots) give() {
	<-s
}

func (s runSlots) size() int {
	return cap(s)
}
