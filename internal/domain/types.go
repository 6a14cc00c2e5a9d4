package domain

import "time"

// Participant is a meeting attendee. Participants are immutable while a job
// is running.
type Participant struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	VoiceSample string `json:"voice_sample,omitempty" yaml:"voice_sample"`
	Email       string `json:"email,omitempty" yaml:"email"`
	Tag         string `json:"tag,omitempty" yaml:"tag"`
}

// HasVoiceSample reports whether a voice sample reference is attached.
func (p Participant) HasVoiceSample() bool {
	return p.VoiceSample != ""
}

// Job is one pipeline run for a single meeting.
type Job struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	Date         time.Time     `json:"date"`
	AudioPath    string        `json:"audio_path"`
	Status       Status        `json:"status"`
	LastError    string        `json:"last_error,omitempty"`
	Document     *DocumentRef  `json:"document,omitempty"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ParticipantNames returns the display names in list order.
func (j Job) ParticipantNames() []string {
	names := make([]string, 0, len(j.Participants))
	for _, p := range j.Participants {
		names = append(names, p.Name)
	}
	return names
}

// Transcript is the speaker-labelled text of a job. SpeakerMapping stays empty
// until speakers are mapped.
type Transcript struct {
	JobID           string            `json:"job_id"`
	Text            string            `json:"text"`
	SpeakerMapping  map[string]string `json:"speaker_mapping,omitempty"`
	UnknownSpeakers []string          `json:"unknown_speakers,omitempty"`
	Utterances      []Utterance       `json:"utterances,omitempty"`
}

// Utterance is one chronological, speaker-labelled piece of speech.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms,omitempty"`
	EndMs   int64  `json:"end_ms,omitempty"`
}

// Agenda is the inferred bullet outline of a meeting.
type Agenda struct {
	JobID string `json:"job_id"`
	Text  string `json:"text"`
}

// Protocol is the accumulating final artifact.
type Protocol struct {
	JobID    string         `json:"job_id"`
	Status   ProtocolStatus `json:"status"`
	Text     string         `json:"text"`
	Language string         `json:"language,omitempty"`
	Filename string         `json:"filename,omitempty"`
	Document *DocumentRef   `json:"document,omitempty"`
}

// DocumentRef is the durable reference returned by the document store.
type DocumentRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StatusSnapshot is a consistent read of a job's committed status.
type StatusSnapshot struct {
	JobID     string       `json:"job_id"`
	Status    Status       `json:"status"`
	Reason    string       `json:"reason,omitempty"`
	Document  *DocumentRef `json:"document,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Artifacts carries the stage results committed together with a status
// transition. Nil fields are left untouched.
type Artifacts struct {
	Transcript *Transcript
	Agenda     *Agenda
	Protocol   *Protocol
}
