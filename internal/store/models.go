package store

import "time"

type Meeting struct {
	ID          string `gorm:"primaryKey;size:36"`
	Topic       string
	Date        time.Time
	AudioPath   string
	Status      string `gorm:"size:32;index"`
	LastError   string
	DocumentID  string
	DocumentURL string
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

type Participant struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string
	VoiceSample string
	Email       string `gorm:"index"`
	Tag         string
}

// MeetingParticipant links participants to a meeting and keeps list order,
// which determines speaker labels.
type MeetingParticipant struct {
	MeetingID     string `gorm:"primaryKey;size:36"`
	ParticipantID string `gorm:"primaryKey;size:36"`
	Position      int
}

type Transcript struct {
	MeetingID       string            `gorm:"primaryKey;size:36"`
	Text            string
	SpeakerMapping  map[string]string `gorm:"serializer:json"`
	UnknownSpeakers []string          `gorm:"serializer:json"`
	Utterances      []UtteranceRecord `gorm:"serializer:json"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime"`
}

type UtteranceRecord struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

type Agenda struct {
	MeetingID string `gorm:"primaryKey;size:36"`
	Text      string
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Protocol struct {
	MeetingID   string `gorm:"primaryKey;size:36"`
	Status      string `gorm:"size:32"`
	Text        string
	Language    string
	Filename    string
	DocumentID  string
	DocumentURL string
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func allModels() []interface{} {
	return []interface{}{
		&Meeting{},
		&Participant{},
		&MeetingParticipant{},
		&Transcript{},
		&Agenda{},
		&Protocol{},
	}
}
