package pipeline

import (
	"reflect"
	"testing"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

func TestMapByVoiceSamples(t *testing.T) {
	participants := []domain.Participant{
		{Name: "Anna", VoiceSample: "anna.wav"},
		{Name: "Ben"},
		{Name: "Clara", VoiceSample: "clara.wav"},
		{Name: "Dan"},
	}

	mapping, unknown := MapByVoiceSamples(participants)

	want := map[string]string{
		"Speaker A": "Anna",
		"Speaker B": "Unknown 0",
		"Speaker C": "Clara",
		"Speaker D": "Unknown 1",
	}
	if !reflect.DeepEqual(mapping, want) {
		t.Errorf("mapping = %v, want %v", mapping, want)
	}
	if !reflect.DeepEqual(unknown, []string{"Ben", "Dan"}) {
		t.Errorf("unknown = %v, want [Ben Dan]", unknown)
	}
}

func TestUsesVoiceSamples(t *testing.T) {
	if UsesVoiceSamples([]domain.Participant{{Name: "A"}, {Name: "B"}}) {
		t.Error("UsesVoiceSamples() = true without samples")
	}
	if !UsesVoiceSamples([]domain.Participant{{Name: "A"}, {Name: "B", VoiceSample: "b.wav"}}) {
		t.Error("UsesVoiceSamples() = false with a sample")
	}
}

func TestParseSpeakerMapping(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    map[string]string
		wantErr bool
	}{
		{
			name:   "plain",
			answer: `{"speaker_mapping": {"Speaker A": "Alice", "Speaker B": "Bob"}}`,
			want:   map[string]string{"Speaker A": "Alice", "Speaker B": "Bob"},
		},
		{
			name:   "fenced with prose",
			answer: "Here you go:\n```json\n{\"speaker_mapping\": {\"Speaker A\": \" Alice \"}}\n```",
			want:   map[string]string{"Speaker A": "Alice"},
		},
		{
			name:   "blank entries dropped",
			answer: `{"speaker_mapping": {"Speaker A": "Alice", "Speaker B": ""}}`,
			want:   map[string]string{"Speaker A": "Alice"},
		},
		{name: "no json", answer: "I cannot tell.", wantErr: true},
		{name: "empty mapping", answer: `{"speaker_mapping": {}}`, wantErr: true},
		{name: "broken json", answer: `{"speaker_mapping": {"Speaker A": }`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpeakerMapping(tt.answer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpeakerMapping() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSpeakerMapping() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnmappedParticipants(t *testing.T) {
	participants := []domain.Participant{{Name: "Alice"}, {Name: "Bob"}, {Name: "Clara"}}
	got := UnmappedParticipants(participants, map[string]string{"Speaker A": "alice", "Speaker B": "Clara"})
	if !reflect.DeepEqual(got, []string{"Bob"}) {
		t.Errorf("UnmappedParticipants() = %v, want [Bob]", got)
	}
}

func TestApplyMapping(t *testing.T) {
	text := "Speaker A:\nHallo.\nSpeaker AA:\nGuten Tag.\nSpeaker B:\nSpeaker A hat recht.\n"
	mapping := map[string]string{
		"Speaker A":  "Alice",
		"Speaker AA": "Zoe",
		"Speaker B":  "Speaker A",
	}

	got := ApplyMapping(text, mapping)
	want := "Alice:\nHallo.\nZoe:\nGuten Tag.\nSpeaker A:\nAlice hat recht.\n"
	if got != want {
		t.Errorf("ApplyMapping() = %q, want %q", got, want)
	}
}

func TestApplyMappingIdempotent(t *testing.T) {
	text := "Speaker A:\nHallo.\nSpeaker B:\nTag.\n"
	mapping := map[string]string{"Speaker A": "Alice", "Speaker B": "Unknown 0"}

	once := ApplyMapping(text, mapping)
	twice := ApplyMapping(once, mapping)
	if once != twice {
		t.Errorf("second application changed text:\n%q\n%q", once, twice)
	}
	if ApplyMapping(text, nil) != text {
		t.Error("empty mapping changed text")
	}
}

func TestExampleMappingJSON(t *testing.T) {
	got := exampleMappingJSON([]domain.Participant{{Name: "A"}, {Name: "B"}})
	want := `{"speaker_mapping":{"Speaker A":"Participant 1","Speaker B":"Participant 2"}}`
	if got != want {
		t.Errorf("exampleMappingJSON() = %s, want %s", got, want)
	}
	if _, err := ParseSpeakerMapping(got); err != nil {
		t.Errorf("example does not parse: %v", err)
	}
}
