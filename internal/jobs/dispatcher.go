package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

func (d *implDispatcher) Run(ctx context.Context) error {
	if err := d.recoverInterrupted(ctx); err != nil {
		return fmt.Errorf("recover jobs: %w", err)
	}

	d.logger.Info(ctx, "Dispatcher started (max concurrent: %d, poll every %s)", d.slots.size(), d.pollInterval)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		d.dispatch(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "Waiting for running jobs to stop...")
			d.wg.Wait()
			d.logger.Info(ctx, "Dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

func (d *implDispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *implDispatcher) Cancel(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	cancel, ok := d.running[id]
	if ok {
		cancel()
	}
	return ok
}

// dispatch starts every scheduled job a slot can be acquired for. The claim
// is a conditional update, so a job is executed at most once even when a
// second dispatcher reads the same list.
func (d *implDispatcher) dispatch(ctx context.Context) {
	scheduled, err := d.repo.ListByStatus(ctx, domain.StatusScheduled)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error(ctx, "List scheduled meetings: %v", err)
		}
		return
	}

	for _, job := range scheduled {
		if d.isRunning(job.ID) {
			continue
		}
		if err := d.slots.take(ctx); err != nil {
			return
		}

		if _, err := d.repo.Claim(ctx, job.ID); err != nil {
			d.slots.give()
			if !errors.Is(err, domain.ErrStatusConflict) {
				d.logger.Error(ctx, "Claim meeting %s: %v", job.ID, err)
			}
			continue
		}
		d.start(ctx, job.ID)
	}
}

func (d *implDispatcher) start(ctx context.Context, id string) {
	jobCtx, cancel := context.WithCancel(ctx)

	d.mu.Lock()
	d.running[id] = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.slots.give()
		defer func() {
			d.mu.Lock()
			delete(d.running, id)
			d.mu.Unlock()
			cancel()
			d.Notify()
		}()

		if err := d.pipeline.Run(jobCtx, id); err != nil {
			d.logger.With(logger.Fields(logger.FieldJobID, id)).Warn(ctx, "Meeting did not complete: %v", err)
		}
	}()
}

func (d *implDispatcher) isRunning(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.running[id]
	return ok
}
