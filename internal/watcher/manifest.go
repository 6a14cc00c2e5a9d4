package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/jobs"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// rejectedSuffix marks manifests that could not be submitted.
const rejectedSuffix = ".rejected"

// LoadManifest decodes a job manifest. Relative audio and voice sample
// paths are resolved against the manifest's directory.
//
//	topic: Budget Review
//	date: 2024-03-01
//	audio: budget.m4a
//	participants:
//	  - name: Alice
//	    voice_sample: samples/alice.wav
//	  - name: Bob
func LoadManifest(path string) (jobs.SubmitRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jobs.SubmitRequest{}, fmt.Errorf("read manifest: %w", err)
	}

	var req jobs.SubmitRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return jobs.SubmitRequest{}, fmt.Errorf("parse manifest: %w", err)
	}

	dir := filepath.Dir(path)
	req.AudioPath = resolve(dir, req.AudioPath)
	for i := range req.Participants {
		req.Participants[i].VoiceSample = resolve(dir, req.Participants[i].VoiceSample)
	}
	return req, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// NewManifestHandler submits each manifest as a job and moves it to
// processedDir. Manifests that fail to load or validate are moved there with
// a ".rejected" suffix so they are not picked up again.
func NewManifestHandler(svc jobs.Service, processedDir string, log logger.Logger) EventHandler {
	return func(ctx context.Context, path string) error {
		if err := os.MkdirAll(processedDir, 0755); err != nil {
			return fmt.Errorf("create processed dir: %w", err)
		}
		dest := filepath.Join(processedDir, filepath.Base(path))

		job, err := submit(ctx, svc, path)
		if err == nil {
			log.With(logger.Fields(logger.FieldJobID, job.ID)).
				Info(ctx, "Manifest %s submitted", filepath.Base(path))
			return moveFile(path, dest)
		}

		if merr := moveFile(path, dest+rejectedSuffix); merr != nil {
			log.Error(ctx, "Failed to move rejected manifest %s: %v", path, merr)
		}
		return fmt.Errorf("submit manifest %s: %w", filepath.Base(path), err)
	}
}

func submit(ctx context.Context, svc jobs.Service, path string) (domain.Job, error) {
	req, err := LoadManifest(path)
	if err != nil {
		return domain.Job{}, domain.InvalidInput("load manifest", err)
	}
	return svc.Submit(ctx, req)
}
