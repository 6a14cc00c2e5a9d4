package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// Stage names as they appear in logs.
const (
	StageTranscribe     = "transcribe"
	StageMapSpeakers    = "map_speakers"
	StageInferAgenda    = "infer_agenda"
	StageDraftProtocol  = "draft_protocol"
	StageDeriveFilename = "derive_filename"
	StageEnsureLanguage = "ensure_language"
	StageEnsureMarkdown = "ensure_markdown"
	StageExport         = "export"
)

// run is the in-memory state of one job execution.
type run struct {
	job        domain.Job
	status     domain.Status
	transcript domain.Transcript
	agenda     domain.Agenda
	protocol   domain.Protocol
}

type stage struct {
	name string
	// to is the status committed with the stage result. Stages without a
	// status keep their output in memory for the next commit.
	to   domain.Status
	exec func(ctx context.Context, r *run) (domain.Artifacts, error)
}

func (o *implOrchestrator) stages() []stage {
	return []stage{
		{name: StageTranscribe, to: domain.StatusTranscribed, exec: o.transcribe},
		{name: StageMapSpeakers, to: domain.StatusSpeakerMapped, exec: o.mapSpeakers},
		{name: StageInferAgenda, to: domain.StatusAgendaInferred, exec: o.inferAgenda},
		{name: StageDraftProtocol, to: domain.StatusRawProtocol, exec: o.draftProtocol},
		{name: StageDeriveFilename, exec: o.deriveFilename},
		{name: StageEnsureLanguage, to: domain.StatusLanguageEnsured, exec: o.ensureLanguage},
		{name: StageEnsureMarkdown, to: domain.StatusMarkdownEnsured, exec: o.ensureMarkdown},
		{name: StageExport, to: domain.StatusExported, exec: o.export},
	}
}

// Run executes every stage in order. Each stage result is committed together
// with its status before the next stage starts. Any error marks the job
// failed and stops the run; there is no automatic retry.
func (o *implOrchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.repo.GetMeeting(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status != domain.StatusProcessing {
		return fmt.Errorf("job %s is %s, not processing: %w", jobID, job.Status, domain.ErrStatusConflict)
	}

	r := &run{job: job, status: job.Status}
	l := o.logger.With(logger.Fields(logger.FieldJobID, jobID))
	l.Info(ctx, "Processing meeting %q (%d participants)", job.Topic, len(job.Participants))
	started := time.Now()

	// A resubmitted job starts from scratch.
	if err := o.repo.ResetArtifacts(ctx, jobID); err != nil {
		return o.fail(ctx, r, "reset", err)
	}

	for _, st := range o.stages() {
		if err := o.runStage(ctx, r, st); err != nil {
			return o.fail(ctx, r, st.name, err)
		}
	}

	l.Info(ctx, "Meeting exported in %s: %s", time.Since(started).Round(time.Second), r.protocol.Document.URL)
	return nil
}

func (o *implOrchestrator) runStage(ctx context.Context, r *run, st stage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("before %s: %w", st.name, domain.ErrCancelled)
	}

	start := time.Now()
	artifacts, err := st.exec(ctx, r)
	if err != nil {
		return err
	}

	// Results observed after a cancellation are discarded.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("after %s: %w", st.name, domain.ErrCancelled)
	}

	if st.to != "" {
		if err := o.repo.Advance(ctx, r.job.ID, r.status, st.to, artifacts); err != nil {
			return err
		}
		r.status = st.to
	}

	o.logger.With(logger.Fields(
		logger.FieldJobID, r.job.ID,
		logger.FieldStage, st.name,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)).Info(ctx, "Stage %s done", st.name)
	return nil
}

// fail records the failure once. The job update uses a context detached
// from cancellation so a cancelled job still reaches failed.
func (o *implOrchestrator) fail(ctx context.Context, r *run, stageName string, err error) error {
	l := o.logger.With(logger.Fields(logger.FieldJobID, r.job.ID, logger.FieldStage, stageName))
	if domain.IsKind(err, domain.KindCancelled) {
		l.Warn(ctx, "Stage %s cancelled: %v", stageName, err)
	} else {
		l.Error(ctx, "Stage %s failed: %v", stageName, err)
	}

	if ferr := o.repo.Fail(context.WithoutCancel(ctx), r.job.ID, domain.Summary(err)); ferr != nil {
		l.Error(ctx, "Failed to mark job failed: %v", ferr)
	}
	return fmt.Errorf("stage %s: %w", stageName, err)
}
