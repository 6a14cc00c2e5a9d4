package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/transcription"
)

// MapByVoiceSamples assigns the i-th participant the i-th speaker label.
// Participants with a voice sample map to their name; the others map to an
// "Unknown N" placeholder, numbered among the unknowns, and are returned as
// unknown speakers.
func MapByVoiceSamples(participants []domain.Participant) (map[string]string, []string) {
	mapping := make(map[string]string, len(participants))
	var unknown []string
	for i, p := range participants {
		label := transcription.LabelForIndex(i)
		if p.HasVoiceSample() {
			mapping[label] = p.Name
			continue
		}
		mapping[label] = fmt.Sprintf("Unknown %d", len(unknown))
		unknown = append(unknown, p.Name)
	}
	return mapping, unknown
}

// UsesVoiceSamples reports whether the voice-sample strategy applies.
func UsesVoiceSamples(participants []domain.Participant) bool {
	for _, p := range participants {
		if p.HasVoiceSample() {
			return true
		}
	}
	return false
}

var errNoMapping = errors.New("speaker mapping is empty")

type speakerMappingReply struct {
	SpeakerMapping map[string]string `json:"speaker_mapping"`
}

// ParseSpeakerMapping decodes {"speaker_mapping": {...}} from a model
// answer, tolerating code fences and surrounding prose.
func ParseSpeakerMapping(answer string) (map[string]string, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in answer")
	}

	var reply speakerMappingReply
	if err := json.Unmarshal([]byte(answer[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("decode speaker mapping: %w", err)
	}

	mapping := make(map[string]string, len(reply.SpeakerMapping))
	for label, name := range reply.SpeakerMapping {
		label, name = strings.TrimSpace(label), strings.TrimSpace(name)
		if label == "" || name == "" {
			continue
		}
		mapping[label] = name
	}
	if len(mapping) == 0 {
		return nil, errNoMapping
	}
	return mapping, nil
}

// UnmappedParticipants lists participants whose name is not a mapping
// target, in participant order.
func UnmappedParticipants(participants []domain.Participant, mapping map[string]string) []string {
	assigned := make(map[string]bool, len(mapping))
	for _, name := range mapping {
		assigned[strings.ToLower(name)] = true
	}
	var out []string
	for _, p := range participants {
		if !assigned[strings.ToLower(p.Name)] {
			out = append(out, p.Name)
		}
	}
	return out
}

// ApplyMapping replaces every occurrence of each label with its name in a
// single pass. Longer labels win over their prefixes ("Speaker AA" before
// "Speaker A"), and replaced text is never scanned again.
func ApplyMapping(text string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return text
	}

	labels := make([]string, 0, len(mapping))
	for label := range mapping {
		if label != "" {
			labels = append(labels, label)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) > len(labels[j])
		}
		return labels[i] < labels[j]
	})

	pairs := make([]string, 0, 2*len(labels))
	for _, label := range labels {
		pairs = append(pairs, label, mapping[label])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// exampleMappingJSON shows the model the expected answer shape.
func exampleMappingJSON(participants []domain.Participant) string {
	example := speakerMappingReply{SpeakerMapping: map[string]string{}}
	for i := range participants {
		example.SpeakerMapping[transcription.LabelForIndex(i)] = fmt.Sprintf("Participant %d", i+1)
	}
	if len(example.SpeakerMapping) == 0 {
		example.SpeakerMapping[transcription.LabelForIndex(0)] = "Participant 1"
	}
	data, _ := json.Marshal(example)
	return string(data)
}
