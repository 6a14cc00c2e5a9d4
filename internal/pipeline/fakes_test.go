package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/agent"
	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/export"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
	"github.com/nguyentantai21042004/protocol-flow/internal/store"
	"github.com/nguyentantai21042004/protocol-flow/internal/transcription"
)

type fakeExecutor struct{}

func (fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return "", os.WriteFile(args[len(args)-1], []byte("RIFF"), 0644)
}

type fakeEngine struct {
	mu         sync.Mutex
	utterances []domain.Utterance
	calls      int
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string, opts transcription.Options) ([]domain.Utterance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.utterances, nil
}

// scriptedModel answers each prompt kind with a canned reply, recognised by
// a phrase of its system prompt.
type scriptedModel struct {
	mu       sync.Mutex
	requests []agent.Request
	replies  map[string]string
	// language answers language detection based on the inspected text.
	language func(text string) string
	// hook runs before answering; it may return an error for a prompt kind.
	hook func(kind string) error
}

const (
	kindMapping   = "return structured JSON"
	kindAgenda    = "infer the agenda"
	kindProtocol  = "writing meeting protocols"
	kindFilename  = "naming meeting protocols"
	kindLanguage  = "determine the language"
	kindTranslate = "translating meeting protocols"
	kindMarkdown  = "formatting text as markdown"
)

var allKinds = []string{kindMapping, kindAgenda, kindProtocol, kindFilename, kindLanguage, kindTranslate, kindMarkdown}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{
		replies: map[string]string{
			kindMapping:   "```json\n{\"speaker_mapping\": {\"Speaker A\": \"Alice\", \"Speaker B\": \"Bob\"}}\n```",
			kindAgenda:    "- Budget Q2\n- Next steps",
			kindProtocol:  "# Protokoll Budget Review\n\n- Das Budget für Q2 wurde **freigegeben**.",
			kindFilename:  "\"Budget Review\"",
			kindTranslate: "# Protokoll (übersetzt)\n\n- Budget freigegeben.",
		},
		language: func(string) string { return "German" },
	}
}

func (m *scriptedModel) Generate(ctx context.Context, req agent.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	kind := ""
	for _, k := range allKinds {
		if strings.Contains(req.System, k) {
			kind = k
			break
		}
	}
	if m.hook != nil {
		if err := m.hook(kind); err != nil {
			return "", err
		}
	}

	switch kind {
	case kindLanguage:
		return m.language(req.User), nil
	case kindMarkdown:
		// Valid markdown comes back unchanged apart from whitespace.
		body := strings.TrimPrefix(req.User, "The meeting protocol is:\n")
		body = body[:strings.Index(body, "\n\nMake sure it is formatted")]
		return "\n" + body + "\n", nil
	case "":
		return "", errors.New("unexpected prompt")
	}
	return m.replies[kind], nil
}

func (m *scriptedModel) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if strings.Contains(r.System, kind) {
			n++
		}
	}
	return n
}

func (m *scriptedModel) userPrompt(kind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if strings.Contains(r.System, kind) {
			return r.User
		}
	}
	return ""
}

func (m *scriptedModel) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type fakeDocumentStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeDocumentStore) Put(ctx context.Context, doc export.Document) (domain.DocumentRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.DocumentRef{}, f.err
	}
	io.Copy(io.Discard, doc.Body)
	return domain.DocumentRef{ID: doc.Key, URL: "https://docs.example.com/" + doc.Key}, nil
}

// transitionRecorder captures every committed status change.
type transitionRecorder struct {
	store.Repository
	mu    sync.Mutex
	steps [][2]domain.Status
}

func (r *transitionRecorder) Advance(ctx context.Context, id string, from, to domain.Status, a domain.Artifacts) error {
	if err := r.Repository.Advance(ctx, id, from, to, a); err != nil {
		return err
	}
	r.mu.Lock()
	r.steps = append(r.steps, [2]domain.Status{from, to})
	r.mu.Unlock()
	return nil
}

type harness struct {
	repo     *transitionRecorder
	engine   *fakeEngine
	model    *scriptedModel
	docs     *fakeDocumentStore
	cache    cache.Store
	pipeline Orchestrator
}

func newHarness(t *testing.T, c cache.Store) *harness {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	db, err := store.Open(ctx, ":memory:", log)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close(db) })

	if c == nil {
		c = cache.Nop()
	}

	h := &harness{
		repo: &transitionRecorder{Repository: store.New(db, log)},
		engine: &fakeEngine{utterances: []domain.Utterance{
			{Speaker: "A", Text: "Wir müssen über das Budget sprechen.", StartMs: 0},
			{Speaker: "B", Text: "Ich schlage zehn Prozent mehr vor.", StartMs: 4000},
			{Speaker: "A", Text: "Einverstanden.", StartMs: 9000},
		}},
		model: newScriptedModel(),
		docs:  &fakeDocumentStore{},
		cache: c,
	}

	scratch := t.TempDir()
	transcriber := transcription.New(config.TranscriptionConfig{
		Language:     "de",
		SpeechModel:  "best",
		FFmpegBinary: "ffmpeg",
		SampleRate:   16000,
		Timeout:      time.Minute,
	}, scratch, fakeExecutor{}, h.engine, c, log)

	prompts, err := agent.NewCatalogue("")
	if err != nil {
		t.Fatalf("NewCatalogue() error = %v", err)
	}

	h.pipeline = New(Deps{
		Repo:        h.repo,
		Transcriber: transcriber,
		Agent:       agent.New(config.LLMConfig{Temperature: 1, Timeout: time.Minute}, h.model, c, log),
		Prompts:     prompts,
		Exporter: export.New(config.ExportConfig{
			Folder:  "protocols",
			Sharing: config.SharingLink,
			Font:    "Arial",
		}, h.docs, scratch, log),
		Budgets: config.TokenBudgets{
			SpeakerMapping: 1000,
			Agenda:         1000,
			Protocol:       5000,
			Filename:       100,
			InferLanguage:  16,
			EnsureLanguage: 5000,
			EnsureMarkdown: 5000,
		},
		Logger: log,
	})
	return h
}

// submit creates a job and claims it the way the dispatcher does.
func (h *harness) submit(t *testing.T, participants []domain.Participant) string {
	t.Helper()
	ctx := context.Background()
	job, err := h.repo.CreateMeeting(ctx, domain.Job{
		ID:           "job-" + strings.ReplaceAll(t.Name(), "/", "-"),
		Topic:        "Budget Review",
		Date:         time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
		AudioPath:    "/data/budget.m4a",
		Participants: participants,
	})
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}
	h.claim(t, job.ID)
	return job.ID
}

func (h *harness) claim(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	if err := h.repo.Schedule(ctx, id); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if _, err := h.repo.Claim(ctx, id); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
}
