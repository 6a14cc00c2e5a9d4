package transcription

import (
	"strings"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Render formats utterances as "Speaker <label>:\n<text>\n" blocks in the
// order given.
func Render(utterances []domain.Utterance) string {
	var b strings.Builder
	for _, u := range utterances {
		b.WriteString(SpeakerLabel(u.Speaker))
		b.WriteString(":\n")
		b.WriteString(strings.TrimSpace(u.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// SpeakerLabel returns the transcript label for an engine speaker id,
// e.g. "A" -> "Speaker A".
func SpeakerLabel(id string) string {
	return "Speaker " + id
}

// LabelForIndex returns the label the engine assigns to the i-th distinct
// speaker: 0 -> "Speaker A", 25 -> "Speaker Z", 26 -> "Speaker AA".
func LabelForIndex(i int) string {
	return SpeakerLabel(letters(i))
}

func letters(i int) string {
	var out []byte
	for {
		out = append([]byte{byte('A' + i%26)}, out...)
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	return string(out)
}
