package domain

// Status is the pipeline position of a Job. Stage statuses advance strictly
// in the order of stageOrder; any non-terminal status may move to StatusFailed.
type Status string

const (
	StatusPending         Status = "pending"
	StatusScheduled       Status = "scheduled"
	StatusProcessing      Status = "processing"
	StatusTranscribed     Status = "transcribed"
	StatusSpeakerMapped   Status = "speaker_mapped"
	StatusAgendaInferred  Status = "agenda_inferred"
	StatusRawProtocol     Status = "raw_protocol"
	StatusLanguageEnsured Status = "language_ensured"
	StatusMarkdownEnsured Status = "markdown_ensured"
	StatusExported        Status = "exported"
	StatusFailed          Status = "failed"
)

var stageOrder = []Status{
	StatusPending,
	StatusScheduled,
	StatusProcessing,
	StatusTranscribed,
	StatusSpeakerMapped,
	StatusAgendaInferred,
	StatusRawProtocol,
	StatusLanguageEnsured,
	StatusMarkdownEnsured,
	StatusExported,
}

// Rank returns the position of s in the stage order, or -1 for StatusFailed
// and unknown values.
func (s Status) Rank() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status that directly follows s.
func (s Status) Next() (Status, bool) {
	r := s.Rank()
	if r < 0 || r == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[r+1], true
}

// IsTerminal reports whether a Job in this status will not change any more
// without an operator resubmission.
func (s Status) IsTerminal() bool {
	return s == StatusExported || s == StatusFailed
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusFailed || s.Rank() >= 0
}

// CanTransition enforces the job state machine: forward by exactly one step,
// to failed from any non-terminal state, or back to scheduled from a terminal
// state (operator resubmission).
func CanTransition(from, to Status) bool {
	switch {
	case to == StatusFailed:
		return !from.IsTerminal()
	case to == StatusScheduled:
		return from == StatusPending || from.IsTerminal()
	default:
		next, ok := from.Next()
		return ok && next == to
	}
}

// ProtocolStatus is the refinement sub-state of the Protocol artifact.
type ProtocolStatus string

const (
	ProtocolRaw             ProtocolStatus = "raw"
	ProtocolLanguageEnsured ProtocolStatus = "language_ensured"
	ProtocolMarkdownEnsured ProtocolStatus = "markdown_ensured"
	ProtocolExported        ProtocolStatus = "exported"
)

// ProtocolStatusFor maps a job status to the protocol sub-state it implies.
func ProtocolStatusFor(s Status) (ProtocolStatus, bool) {
	switch s {
	case StatusRawProtocol:
		return ProtocolRaw, true
	case StatusLanguageEnsured:
		return ProtocolLanguageEnsured, true
	case StatusMarkdownEnsured:
		return ProtocolMarkdownEnsured, true
	case StatusExported:
		return ProtocolExported, true
	default:
		return "", false
	}
}
