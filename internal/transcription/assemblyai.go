package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// AssemblyAIEngine uploads the prepared audio to AssemblyAI and waits for
// the diarized transcript.
type AssemblyAIEngine struct {
	client *aai.Client
}

func NewAssemblyAIEngine(apiKey string) (*AssemblyAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("AssemblyAI API key is required")
	}
	return &AssemblyAIEngine{client: aai.NewClient(apiKey)}, nil
}

func (e *AssemblyAIEngine) Transcribe(ctx context.Context, audioPath string, opts Options) ([]domain.Utterance, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(opts.Language),
		SpeakerLabels: aai.Bool(opts.Diarization),
		SpeechModel:   aai.SpeechModel(opts.SpeechModel),
	}
	if opts.SpeakersExpected > 0 {
		params.SpeakersExpected = aai.Int64(int64(opts.SpeakersExpected))
	}

	transcript, err := e.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcribe: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, errors.New("assemblyai: " + aai.ToString(transcript.Error))
	}

	utterances := make([]domain.Utterance, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		text := aai.ToString(u.Text)
		if text == "" {
			continue
		}
		utterances = append(utterances, domain.Utterance{
			Speaker: aai.ToString(u.Speaker),
			Text:    text,
			StartMs: aai.ToInt64(u.Start),
			EndMs:   aai.ToInt64(u.End),
		})
	}
	return utterances, nil
}
