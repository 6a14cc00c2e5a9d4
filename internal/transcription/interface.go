package transcription

import (
	"context"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Adapter turns a meeting recording into a speaker-labelled transcript.
type Adapter interface {
	Transcribe(ctx context.Context, req Request) (domain.Transcript, error)
}

// Engine is the speech-to-text capability.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) ([]domain.Utterance, error)
}

// Request describes one transcription. Participants are in list order.
type Request struct {
	JobID        string
	AudioPath    string
	Participants []domain.Participant
}

// Options are passed through to the engine.
type Options struct {
	Language         string
	SpeakersExpected int
	Diarization      bool
	SpeechModel      string
}
