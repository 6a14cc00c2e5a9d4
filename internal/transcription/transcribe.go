package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Transcribe normalizes the recording, prepends voice samples, runs the
// engine and renders the result. All temporary audio is removed before
// returning, on success and on failure.
func (a *implAdapter) Transcribe(ctx context.Context, req Request) (domain.Transcript, error) {
	key := cache.Key(cache.StageTranscript, req.JobID)
	if cached, ok, err := cache.GetJSON[domain.Transcript](ctx, a.cache, key); err != nil {
		a.logger.Warn(ctx, "Cache read %s failed: %v", key, err)
	} else if ok {
		a.logger.Info(ctx, "Transcript for job %s served from cache", req.JobID)
		return cached, nil
	}

	utterances, err := a.run(ctx, req)
	if err != nil {
		return domain.Transcript{}, domain.TranscriptionError("transcribe", err)
	}
	if len(utterances) == 0 {
		return domain.Transcript{}, domain.TranscriptionError("transcribe", domain.ErrNoUtterances)
	}

	sort.SliceStable(utterances, func(i, j int) bool {
		return utterances[i].StartMs < utterances[j].StartMs
	})

	transcript := domain.Transcript{
		JobID:      req.JobID,
		Text:       Render(utterances),
		Utterances: utterances,
	}

	if err := cache.PutJSON(ctx, a.cache, key, transcript); err != nil {
		a.logger.Warn(ctx, "Cache write %s failed: %v", key, err)
	}
	return transcript, nil
}

func (a *implAdapter) run(ctx context.Context, req Request) ([]domain.Utterance, error) {
	if err := os.MkdirAll(a.scratch, 0755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	dir, err := os.MkdirTemp(a.scratch, "job-"+req.JobID+"-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer a.cleanupTempDir(ctx, dir)

	a.logger.Info(ctx, "Normalizing audio: %s", req.AudioPath)
	normalized := filepath.Join(dir, "meeting.wav")
	if err := a.normalize(ctx, req.AudioPath, normalized); err != nil {
		return nil, err
	}

	input, err := a.prependVoiceSamples(ctx, dir, normalized, req)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Language:         a.cfg.Language,
		SpeakersExpected: len(req.Participants),
		Diarization:      true,
		SpeechModel:      a.cfg.SpeechModel,
	}

	callCtx, cancel := a.bounded(ctx)
	defer cancel()

	a.logger.Info(ctx, "Starting transcription (%s, %d speakers expected)", opts.Language, opts.SpeakersExpected)
	utterances, err := a.engine.Transcribe(callCtx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	a.logger.Info(ctx, "Transcription completed with %d utterances", len(utterances))
	return utterances, nil
}

// bounded limits a single external call (ffmpeg or the engine) to the
// configured transcription timeout.
func (a *implAdapter) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}
