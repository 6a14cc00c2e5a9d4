package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// Submit validates the request, stores the job with its participants and
// schedules exactly one execution.
func (s *implService) Submit(ctx context.Context, req SubmitRequest) (domain.Job, error) {
	if err := req.Validate(); err != nil {
		return domain.Job{}, err
	}

	job := domain.Job{
		ID:        uuid.NewString(),
		Topic:     req.Topic,
		Date:      req.Date,
		AudioPath: req.AudioPath,
	}
	for _, p := range req.Participants {
		job.Participants = append(job.Participants, domain.Participant{
			ID:          uuid.NewString(),
			Name:        p.Name,
			VoiceSample: p.VoiceSample,
			Email:       p.Email,
			Tag:         p.Tag,
		})
	}

	created, err := s.repo.CreateMeeting(ctx, job)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create meeting: %w", err)
	}
	s.logger.With(logger.Fields(logger.FieldJobID, created.ID)).
		Info(ctx, "Meeting %q submitted with %d participants", created.Topic, len(created.Participants))

	if err := s.Enqueue(ctx, created.ID); err != nil {
		return created, err
	}
	created.Status = domain.StatusScheduled
	return created, nil
}

func (s *implService) Enqueue(ctx context.Context, id string) error {
	if err := s.repo.Schedule(ctx, id); err != nil {
		return err
	}
	s.logger.With(logger.Fields(logger.FieldJobID, id)).Info(ctx, "Meeting scheduled")
	s.dispatcher.Notify()
	return nil
}

// Status reads the committed record, which stays authoritative after the
// execution that produced it is gone.
func (s *implService) Status(ctx context.Context, id string) (domain.StatusSnapshot, error) {
	return s.repo.Status(ctx, id)
}

func (s *implService) Cancel(ctx context.Context, id string) error {
	l := s.logger.With(logger.Fields(logger.FieldJobID, id))
	if s.dispatcher.Cancel(id) {
		l.Info(ctx, "Cancellation requested for running meeting")
		return nil
	}

	snap, err := s.repo.Status(ctx, id)
	if err != nil {
		return err
	}
	if snap.Status.IsTerminal() {
		return fmt.Errorf("meeting %s is already %s: %w", id, snap.Status, domain.ErrStatusConflict)
	}

	if err := s.repo.Fail(ctx, id, domain.Summary(domain.ErrCancelled)); err != nil {
		return err
	}
	l.Info(ctx, "Meeting cancelled before it started")
	return nil
}
