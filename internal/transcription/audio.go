package transcription

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
)

// normalize converts any input recording to mono PCM WAV at the configured
// sample rate.
//   -vn: drop video streams
//   -ac 1: mono
//   -c:a pcm_s16le: 16-bit little-endian PCM
func (a *implAdapter) normalize(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-i", inputPath,
		"-vn",
		"-ar", strconv.Itoa(a.cfg.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}

	callCtx, cancel := a.bounded(ctx)
	defer cancel()

	if _, err := a.executor.Execute(callCtx, a.cfg.FFmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg normalize %s: %w", filepath.Base(inputPath), err)
	}
	return nil
}

// concat writes head followed by tail into outputPath. Both inputs are
// resampled so recordings with different formats can be joined.
func (a *implAdapter) concat(ctx context.Context, head, tail, outputPath string) error {
	rate := strconv.Itoa(a.cfg.SampleRate)
	filter := fmt.Sprintf(
		"[0:a]aformat=sample_rates=%[1]s:channel_layouts=mono[a0];"+
			"[1:a]aformat=sample_rates=%[1]s:channel_layouts=mono[a1];"+
			"[a0][a1]concat=n=2:v=0:a=1[out]", rate)

	args := []string{
		"-i", head,
		"-i", tail,
		"-filter_complex", filter,
		"-map", "[out]",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}

	callCtx, cancel := a.bounded(ctx)
	defer cancel()

	if _, err := a.executor.Execute(callCtx, a.cfg.FFmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg concat %s: %w", filepath.Base(head), err)
	}
	return nil
}

// prependVoiceSamples walks the participants backwards and prepends each
// available voice sample to the current audio, so the final file holds the
// samples in participant order followed by the meeting.
func (a *implAdapter) prependVoiceSamples(ctx context.Context, dir, meetingAudio string, req Request) (string, error) {
	current := meetingAudio
	for i := len(req.Participants) - 1; i >= 0; i-- {
		p := req.Participants[i]
		if !p.HasVoiceSample() {
			continue
		}

		out := filepath.Join(dir, fmt.Sprintf("with_sample_%d.wav", i))
		if err := a.concat(ctx, p.VoiceSample, current, out); err != nil {
			return "", fmt.Errorf("prepend voice sample of %s: %w", p.Name, err)
		}
		a.logger.Debug(ctx, "Prepended voice sample of %s", p.Name)
		current = out
	}
	return current, nil
}
