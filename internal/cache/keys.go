package cache

import (
	"context"
	"fmt"
)

// Stage names used to derive cache keys.
const (
	StageTranscript     = "transcript"
	StageSpeakerMapping = "speaker_mapping"
	StageAgenda         = "agenda"
	StageProtocol       = "meeting_protocol"
	StageFilename       = "filename"
	StageInferLanguage  = "infer_language"
	StageDraftLanguage  = "infer_protocol_language"
	StageEnsureLanguage = "ensure_language"
	StageEnsureMarkdown = "ensure_markdown"
)

// Key returns the cache key for a stage of a job, e.g. "agenda_<job_id>".
func Key(stage, jobID string) string {
	return stage + "_" + jobID
}

// AllStages lists every stage that may hold a cached value for a job.
func AllStages() []string {
	return []string{
		StageTranscript,
		StageSpeakerMapping,
		StageAgenda,
		StageProtocol,
		StageFilename,
		StageInferLanguage,
		StageDraftLanguage,
		StageEnsureLanguage,
		StageEnsureMarkdown,
	}
}

// Clear deletes every cached stage result of a job, so the next run of that
// job recomputes each stage.
func Clear(ctx context.Context, s Store, jobID string) error {
	for _, stage := range AllStages() {
		key := Key(stage, jobID)
		if err := s.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
