package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// fakeExecutor records ffmpeg invocations and creates the output file
// named by the last argument. From call number hangFrom on, it blocks until
// ctx is done, like a stalled ffmpeg.
type fakeExecutor struct {
	mu       sync.Mutex
	calls    [][]string
	fail     bool
	hangFrom int
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	n := len(f.calls)
	f.mu.Unlock()
	if f.hangFrom > 0 && n >= f.hangFrom {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.fail {
		return "", errors.New("ffmpeg: invalid data found when processing input")
	}
	out := args[len(args)-1]
	return "", os.WriteFile(out, []byte("RIFF"), 0644)
}

type fakeEngine struct {
	utterances []domain.Utterance
	err        error
	calls      int
	gotPath    string
	gotOpts    Options
	existed    bool
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string, opts Options) ([]domain.Utterance, error) {
	f.calls++
	f.gotPath = audioPath
	f.gotOpts = opts
	_, err := os.Stat(audioPath)
	f.existed = err == nil
	return f.utterances, f.err
}

func testConfig() config.TranscriptionConfig {
	return config.TranscriptionConfig{
		Language:     "de",
		SpeechModel:  "best",
		FFmpegBinary: "ffmpeg",
		SampleRate:   16000,
	}
}

func participants() []domain.Participant {
	return []domain.Participant{
		{ID: "1", Name: "A", VoiceSample: "/samples/a.wav"},
		{ID: "2", Name: "B"},
		{ID: "3", Name: "C", VoiceSample: "/samples/c.wav"},
	}
}

func scratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch dir not cleaned up: %d entries left", len(entries))
	}
}

func TestTranscribe(t *testing.T) {
	scratch := t.TempDir()
	exec := &fakeExecutor{}
	engine := &fakeEngine{utterances: []domain.Utterance{
		{Speaker: "A", Text: "Guten Morgen.", StartMs: 0},
		{Speaker: "B", Text: " Hallo zusammen. ", StartMs: 1200},
	}}
	a := New(testConfig(), scratch, exec, engine, nil, logger.Nop())

	got, err := a.Transcribe(context.Background(), Request{
		JobID:        "job-1",
		AudioPath:    "/data/meeting.m4a",
		Participants: participants(),
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	want := "Speaker A:\nGuten Morgen.\nSpeaker B:\nHallo zusammen.\n"
	if got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
	if engine.gotOpts.SpeakersExpected != 3 || !engine.gotOpts.Diarization {
		t.Errorf("Options = %+v", engine.gotOpts)
	}
	if engine.gotOpts.Language != "de" || engine.gotOpts.SpeechModel != "best" {
		t.Errorf("Options = %+v", engine.gotOpts)
	}
	if !engine.existed {
		t.Error("engine input should exist during the call")
	}
	scratchEmpty(t, scratch)
}

func TestPrependOrder(t *testing.T) {
	exec := &fakeExecutor{}
	engine := &fakeEngine{utterances: []domain.Utterance{{Speaker: "A", Text: "x"}}}
	a := New(testConfig(), t.TempDir(), exec, engine, nil, logger.Nop())

	if _, err := a.Transcribe(context.Background(), Request{
		JobID:        "job-1",
		AudioPath:    "/data/meeting.m4a",
		Participants: participants(),
	}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	// normalize, then C's sample, then A's sample.
	if len(exec.calls) != 3 {
		t.Fatalf("ffmpeg calls = %d, want 3", len(exec.calls))
	}
	heads := []string{exec.calls[1][2], exec.calls[2][2]}
	if heads[0] != "/samples/c.wav" || heads[1] != "/samples/a.wav" {
		t.Errorf("prepend order = %v, want [c a]", heads)
	}
	// The last concat must wrap the output of the previous one.
	if exec.calls[2][4] != exec.calls[1][len(exec.calls[1])-1] {
		t.Errorf("concat chain broken: %v", exec.calls[2])
	}
	if engine.gotPath != exec.calls[2][len(exec.calls[2])-1] {
		t.Errorf("engine got %s, want final concat output", engine.gotPath)
	}
}

func TestTranscribeWithoutSamplesSkipsConcat(t *testing.T) {
	exec := &fakeExecutor{}
	engine := &fakeEngine{utterances: []domain.Utterance{{Speaker: "A", Text: "x"}}}
	a := New(testConfig(), t.TempDir(), exec, engine, nil, logger.Nop())

	_, err := a.Transcribe(context.Background(), Request{
		JobID:        "job-1",
		AudioPath:    "/data/meeting.wav",
		Participants: []domain.Participant{{Name: "A"}, {Name: "B"}},
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("ffmpeg calls = %d, want 1", len(exec.calls))
	}
}

func TestTranscribeFailures(t *testing.T) {
	tests := []struct {
		name      string
		exec      *fakeExecutor
		engine    *fakeEngine
		wantNoUtt bool
	}{
		{
			name:      "no utterances",
			exec:      &fakeExecutor{},
			engine:    &fakeEngine{},
			wantNoUtt: true,
		},
		{
			name:   "engine error",
			exec:   &fakeExecutor{},
			engine: &fakeEngine{err: errors.New("upload failed")},
		},
		{
			name:   "ffmpeg error",
			exec:   &fakeExecutor{fail: true},
			engine: &fakeEngine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scratch := t.TempDir()
			a := New(testConfig(), scratch, tt.exec, tt.engine, nil, logger.Nop())

			_, err := a.Transcribe(context.Background(), Request{
				JobID:        "job-1",
				AudioPath:    "/data/meeting.m4a",
				Participants: participants(),
			})
			if !domain.IsKind(err, domain.KindTranscription) {
				t.Fatalf("error = %v, want transcription error", err)
			}
			if errors.Is(err, domain.ErrNoUtterances) != tt.wantNoUtt {
				t.Errorf("ErrNoUtterances = %v, want %v", !tt.wantNoUtt, tt.wantNoUtt)
			}
			scratchEmpty(t, scratch)
		})
	}
}

func TestTranscribeStalledFFmpeg(t *testing.T) {
	tests := []struct {
		name     string
		hangFrom int
	}{
		{name: "normalize stalls", hangFrom: 1},
		{name: "voice sample concat stalls", hangFrom: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Timeout = 50 * time.Millisecond
			scratch := t.TempDir()
			engine := &fakeEngine{utterances: []domain.Utterance{{Speaker: "A", Text: "x"}}}
			a := New(cfg, scratch, &fakeExecutor{hangFrom: tt.hangFrom}, engine, nil, logger.Nop())

			errc := make(chan error, 1)
			go func() {
				_, err := a.Transcribe(context.Background(), Request{
					JobID:        "job-1",
					AudioPath:    "/data/meeting.m4a",
					Participants: participants(),
				})
				errc <- err
			}()

			select {
			case err := <-errc:
				if !domain.IsKind(err, domain.KindTranscription) {
					t.Errorf("error = %v, want transcription error", err)
				}
				if !errors.Is(err, context.DeadlineExceeded) {
					t.Errorf("error = %v, want deadline exceeded", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Transcribe did not return after the timeout")
			}
			if engine.calls != 0 {
				t.Errorf("engine calls = %d, want 0", engine.calls)
			}
			scratchEmpty(t, scratch)
		})
	}
}

func TestTranscribeCacheReplay(t *testing.T) {
	store := cache.NewMemoryStore()
	engine := &fakeEngine{utterances: []domain.Utterance{{Speaker: "A", Text: "Hallo"}}}
	a := New(testConfig(), t.TempDir(), &fakeExecutor{}, engine, store, logger.Nop())
	req := Request{JobID: "job-1", AudioPath: "/data/m.wav", Participants: participants()}

	first, err := a.Transcribe(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Transcribe(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}
	if first.Text != second.Text {
		t.Errorf("replayed text differs: %q vs %q", first.Text, second.Text)
	}
}

func TestLabelForIndex(t *testing.T) {
	tests := map[int]string{0: "Speaker A", 2: "Speaker C", 25: "Speaker Z", 26: "Speaker AA"}
	for i, want := range tests {
		if got := LabelForIndex(i); got != want {
			t.Errorf("LabelForIndex(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestRenderTrimsText(t *testing.T) {
	got := Render([]domain.Utterance{{Speaker: "B", Text: "  Ja.\n"}})
	if got != "Speaker B:\nJa.\n" {
		t.Errorf("Render() = %q", got)
	}
	if strings.Count(Render(nil), "Speaker") != 0 {
		t.Error("Render(nil) should be empty")
	}
}

func TestNormalizeArgs(t *testing.T) {
	exec := &fakeExecutor{}
	a := New(testConfig(), t.TempDir(), exec, &fakeEngine{}, nil, logger.Nop()).(*implAdapter)
	out := filepath.Join(t.TempDir(), "out.wav")
	if err := a.normalize(context.Background(), "/in.mp3", out); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(exec.calls[0], " ")
	for _, want := range []string{"-ar 16000", "-ac 1", "pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Errorf("ffmpeg args %q missing %q", joined, want)
		}
	}
}
