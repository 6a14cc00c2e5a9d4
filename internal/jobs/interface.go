package jobs

import (
	"context"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Service is the submission and query surface used by the HTTP API and the
// inbox watcher.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (domain.Job, error)
	// Enqueue schedules an existing job. A job that is already scheduled or
	// running is rejected with domain.ErrAlreadyQueued.
	Enqueue(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (domain.StatusSnapshot, error)
	// Cancel stops a running job at its next stage boundary, or fails a job
	// that has not started yet.
	Cancel(ctx context.Context, id string) error
}

// Dispatcher runs scheduled jobs in the background.
type Dispatcher interface {
	// Run recovers jobs left behind by a previous process, then claims and
	// executes scheduled jobs until ctx is done.
	Run(ctx context.Context) error
	// Notify wakes the dispatcher without waiting for the next poll.
	Notify()
	// Cancel cancels the execution of id if it runs in this process.
	Cancel(id string) bool
}
