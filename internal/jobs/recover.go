package jobs

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// interruptedStatuses are the statuses only a running execution holds.
var interruptedStatuses = []domain.Status{
	domain.StatusProcessing,
	domain.StatusTranscribed,
	domain.StatusSpeakerMapped,
	domain.StatusAgendaInferred,
	domain.StatusRawProtocol,
	domain.StatusLanguageEnsured,
	domain.StatusMarkdownEnsured,
}

// recoverInterrupted fails the jobs a previous process left mid-run.
// Scheduled jobs are left alone and picked up by the first dispatch.
func (d *implDispatcher) recoverInterrupted(ctx context.Context) error {
	stale, err := d.repo.ListByStatus(ctx, interruptedStatuses...)
	if err != nil {
		return err
	}

	reason := domain.Summary(domain.ErrInterrupted)
	for _, job := range stale {
		if err := d.repo.Fail(ctx, job.ID, reason); err != nil {
			return fmt.Errorf("fail interrupted meeting %s: %w", job.ID, err)
		}
		d.logger.With(logger.Fields(logger.FieldJobID, job.ID)).
			Warn(ctx, "Meeting was interrupted at %s and marked failed", job.Status)
	}
	if len(stale) > 0 {
		d.logger.Info(ctx, "Recovered %d interrupted meetings", len(stale))
	}
	return nil
}
