package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyQueued  = errors.New("job already scheduled or processing")
	ErrStatusConflict = errors.New("job status changed concurrently")
	ErrNoUtterances   = errors.New("transcription returned no utterances")
	ErrEmptyResponse  = errors.New("language model returned an empty response")
	ErrCancelled      = errors.New("job cancelled")
	ErrInterrupted    = errors.New("job interrupted by a restart")
)

// Kind classifies pipeline failures.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindAgent         Kind = "agent"
	KindExport        Kind = "export"
	KindPersistence   Kind = "persistence"
	KindCancelled     Kind = "cancelled"
	KindInvalidInput  Kind = "invalid_input"
)

// Error is a classified failure raised by an adapter or the store.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// TranscriptionError wraps a speech-to-text engine or audio format failure.
func TranscriptionError(op string, err error) error {
	return &Error{Kind: KindTranscription, Op: op, Err: err}
}

// AgentError wraps a language model transport or empty-response failure.
func AgentError(op string, err error) error {
	return &Error{Kind: KindAgent, Op: op, Err: err}
}

// ExportError wraps a document conversion or upload failure.
func ExportError(op string, err error) error {
	return &Error{Kind: KindExport, Op: op, Err: err}
}

// PersistenceError wraps a durable-store failure.
func PersistenceError(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// InvalidInput reports a rejected submission.
func InvalidInput(op string, err error) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: err}
}

// KindOf returns the classification of err, or "" when it is unclassified.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Summary returns the human-readable failure reason stored on a job. It never
// includes the wrapped error text.
func Summary(err error) string {
	if errors.Is(err, ErrInterrupted) {
		return "The job was interrupted by a restart. Resubmit it to run again."
	}
	if errors.Is(err, context.DeadlineExceeded) && KindOf(err) == "" {
		return "The job took too long and was stopped."
	}
	switch KindOf(err) {
	case KindTranscription:
		if errors.Is(err, ErrNoUtterances) {
			return "Transcription failed: no speech was recognised in the recording."
		}
		return "Transcription failed: the speech-to-text service could not process the recording."
	case KindAgent:
		return "Protocol generation failed: the language model did not return a usable answer."
	case KindExport:
		return "Export failed: the protocol could not be uploaded. All intermediate results were kept."
	case KindPersistence:
		return "Saving progress failed: the job record could not be updated."
	case KindCancelled:
		return "The job was cancelled."
	case KindInvalidInput:
		return "The meeting submission is invalid."
	default:
		return "An unexpected error occurred while processing the meeting."
	}
}
