package store

import (
	"context"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Repository persists jobs, their participants and the stage artifacts.
// During processing the orchestrator is its only writer.
type Repository interface {
	CreateMeeting(ctx context.Context, job domain.Job) (domain.Job, error)
	GetMeeting(ctx context.Context, id string) (domain.Job, error)
	ListByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.Job, error)

	// Schedule queues a pending or terminal job. It fails with
	// domain.ErrAlreadyQueued while the job is scheduled or running.
	Schedule(ctx context.Context, id string) error
	// Claim moves a scheduled job to processing. It fails with
	// domain.ErrStatusConflict when another caller claimed it first.
	Claim(ctx context.Context, id string) (domain.Job, error)
	// Advance commits the artifacts and the from->to transition in one
	// transaction, guarded on the current status still being from.
	Advance(ctx context.Context, id string, from, to domain.Status, artifacts domain.Artifacts) error
	Fail(ctx context.Context, id string, reason string) error
	ResetArtifacts(ctx context.Context, id string) error

	Status(ctx context.Context, id string) (domain.StatusSnapshot, error)
	Artifacts(ctx context.Context, id string) (domain.Artifacts, error)
}
