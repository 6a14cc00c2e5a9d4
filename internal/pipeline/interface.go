package pipeline

import "context"

// Orchestrator drives one claimed job through every stage.
type Orchestrator interface {
	// Run processes a job that is in status processing. It returns the
	// stage error after the job has been marked failed.
	Run(ctx context.Context, jobID string) error
}
