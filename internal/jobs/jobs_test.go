package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
	"github.com/nguyentantai21042004/protocol-flow/internal/store"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()
	db, err := store.Open(context.Background(), ":memory:", logger.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close(db) })
	return store.New(db, logger.Nop())
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Topic:     "Budget Review",
		Date:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		AudioPath: "/data/budget.m4a",
		Participants: []ParticipantInput{
			{Name: "Alice", VoiceSample: "/data/alice.wav", Email: "alice@example.com"},
			{Name: "Bob"},
		},
	}
}

// fakeDispatcher records notifications and reports ids in running as
// cancellable.
type fakeDispatcher struct {
	notified  int
	running   map[string]bool
	cancelled []string
}

func (f *fakeDispatcher) Run(ctx context.Context) error { return nil }
func (f *fakeDispatcher) Notify()                       { f.notified++ }
func (f *fakeDispatcher) Cancel(id string) bool {
	if f.running[id] {
		f.cancelled = append(f.cancelled, id)
		return true
	}
	return false
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *SubmitRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *SubmitRequest) {}},
		{name: "missing topic", mutate: func(r *SubmitRequest) { r.Topic = "" }, wantField: "topic"},
		{name: "missing date", mutate: func(r *SubmitRequest) { r.Date = time.Time{} }, wantField: "date"},
		{name: "missing audio", mutate: func(r *SubmitRequest) { r.AudioPath = "" }, wantField: "audio_path"},
		{name: "no participants", mutate: func(r *SubmitRequest) { r.Participants = nil }, wantField: "participants"},
		{
			name:      "duplicate names",
			mutate:    func(r *SubmitRequest) { r.Participants[1].Name = "Alice" },
			wantField: "participants",
		},
		{
			name:      "participant without name",
			mutate:    func(r *SubmitRequest) { r.Participants[1].Name = "" },
			wantField: "participants[1].name",
		},
		{
			name:      "bad email",
			mutate:    func(r *SubmitRequest) { r.Participants[0].Email = "alice" },
			wantField: "participants[0].email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !domain.IsKind(err, domain.KindInvalidInput) {
				t.Fatalf("Validate() error = %v, want invalid input", err)
			}
			if !strings.Contains(err.Error(), tt.wantField+":") {
				t.Errorf("Validate() error = %q, want field %q", err, tt.wantField)
			}
		})
	}
}

func TestSubmitRequestJSONDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar date", date: `"2024-03-01"`, want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", date: `"2024-03-01T10:00:00Z"`, want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "local date time", date: `"2024-03-01T10:30:00"`, want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "empty", date: `""`},
		{name: "free text", date: `"yesterday"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"topic": "Budget Review", "date": ` + tt.date + `, "audio_path": "/data/budget.m4a", "participants": [{"name": "Alice"}]}`
			var req SubmitRequest
			err := json.Unmarshal([]byte(body), &req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal() = %+v, want error", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !req.Date.Equal(tt.want) {
				t.Errorf("Date = %v, want %v", req.Date, tt.want)
			}
			if req.Topic != "Budget Review" || req.AudioPath != "/data/budget.m4a" || len(req.Participants) != 1 {
				t.Errorf("other fields not decoded: %+v", req)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	repo := newTestRepo(t)
	d := &fakeDispatcher{}
	svc := NewService(repo, d, logger.Nop())
	ctx := context.Background()

	job, err := svc.Submit(ctx, validRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if job.ID == "" || job.Status != domain.StatusScheduled {
		t.Errorf("Submit() = %+v, want scheduled job with id", job)
	}
	if d.notified != 1 {
		t.Errorf("notified = %d, want 1", d.notified)
	}

	stored, err := repo.GetMeeting(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetMeeting() error = %v", err)
	}
	if len(stored.Participants) != 2 || stored.Participants[0].Name != "Alice" {
		t.Errorf("Participants = %+v", stored.Participants)
	}
	if stored.Participants[0].ID == "" || stored.Participants[0].ID == stored.Participants[1].ID {
		t.Errorf("participant ids not assigned: %+v", stored.Participants)
	}

	if err := svc.Enqueue(ctx, job.ID); !errors.Is(err, domain.ErrAlreadyQueued) {
		t.Errorf("Enqueue() error = %v, want ErrAlreadyQueued", err)
	}
	if d.notified != 1 {
		t.Errorf("rejected enqueue notified the dispatcher")
	}
}

func TestSubmitInvalid(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, &fakeDispatcher{}, logger.Nop())

	req := validRequest()
	req.Topic = ""
	if _, err := svc.Submit(context.Background(), req); !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("Submit() error = %v, want invalid input", err)
	}

	jobs, _ := repo.ListByStatus(context.Background(), domain.StatusPending, domain.StatusScheduled)
	if len(jobs) != 0 {
		t.Errorf("invalid submission stored %d jobs", len(jobs))
	}
}

func TestCancel(t *testing.T) {
	repo := newTestRepo(t)
	d := &fakeDispatcher{running: map[string]bool{}}
	svc := NewService(repo, d, logger.Nop())
	ctx := context.Background()

	job, err := svc.Submit(ctx, validRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := svc.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	snap, _ := svc.Status(ctx, job.ID)
	if snap.Status != domain.StatusFailed || snap.Reason != "The job was cancelled." {
		t.Errorf("Status() = %+v, want failed and cancelled", snap)
	}

	if err := svc.Cancel(ctx, job.ID); !errors.Is(err, domain.ErrStatusConflict) {
		t.Errorf("second Cancel() error = %v, want ErrStatusConflict", err)
	}
	if err := svc.Cancel(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Cancel(missing) error = %v, want ErrNotFound", err)
	}

	// A failed job can be resubmitted.
	if err := svc.Enqueue(ctx, job.ID); err != nil {
		t.Fatalf("Enqueue() after cancel error = %v", err)
	}
	d.running[job.ID] = true
	if err := svc.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel(running) error = %v", err)
	}
	if len(d.cancelled) != 1 {
		t.Errorf("dispatcher cancellations = %v, want 1", d.cancelled)
	}
	// The running execution records the failure itself.
	if snap, _ := svc.Status(ctx, job.ID); snap.Status != domain.StatusScheduled {
		t.Errorf("Status = %v, want scheduled until the execution stops", snap.Status)
	}
}

// fakeOrchestrator records executions. When block is set, each run waits
// until release is closed or its context is cancelled.
type fakeOrchestrator struct {
	mu      sync.Mutex
	runs    []string
	started chan string
	block   bool
	release chan struct{}

	active    int32
	maxActive int32
}

func newFakeOrchestrator(block bool) *fakeOrchestrator {
	return &fakeOrchestrator{
		started: make(chan string, 16),
		block:   block,
		release: make(chan struct{}),
	}
}

func (f *fakeOrchestrator) Run(ctx context.Context, jobID string) error {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		m := atomic.LoadInt32(&f.maxActive)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxActive, m, n) {
			break
		}
	}

	f.mu.Lock()
	f.runs = append(f.runs, jobID)
	f.mu.Unlock()
	f.started <- jobID

	if !f.block {
		return nil
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func waitStarted(t *testing.T, f *fakeOrchestrator, n int) []string {
	t.Helper()
	var ids []string
	timeout := time.After(5 * time.Second)
	for len(ids) < n {
		select {
		case id := <-f.started:
			ids = append(ids, id)
		case <-timeout:
			t.Fatalf("started %d runs, want %d", len(ids), n)
		}
	}
	return ids
}

func startDispatcher(t *testing.T, d Dispatcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel, done
}

func TestRunSlots(t *testing.T) {
	slots := newRunSlots(2)
	ctx := context.Background()
	for i := 0; i < slots.size(); i++ {
		if err := slots.take(ctx); err != nil {
			t.Fatalf("take() %d error = %v", i, err)
		}
	}

	full, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := slots.take(full); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("take() on full slots error = %v, want deadline exceeded", err)
	}

	slots.give()
	if err := slots.take(ctx); err != nil {
		t.Errorf("take() after give() error = %v", err)
	}
}

func TestDispatcherRunsEachJobOnce(t *testing.T) {
	repo := newTestRepo(t)
	orch := newFakeOrchestrator(false)
	d := NewDispatcher(repo, orch, 2, time.Hour, logger.Nop())
	svc := NewService(repo, d, logger.Nop())
	ctx := context.Background()

	startDispatcher(t, d)

	want := map[string]bool{}
	for i := 0; i < 3; i++ {
		job, err := svc.Submit(ctx, validRequest())
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		want[job.ID] = true
	}

	for _, id := range waitStarted(t, orch, 3) {
		if !want[id] {
			t.Errorf("unexpected run of %s", id)
		}
		delete(want, id)
	}
	if len(want) != 0 {
		t.Errorf("jobs never run: %v", want)
	}

	select {
	case id := <-orch.started:
		t.Errorf("job %s ran twice", id)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherLimitsConcurrency(t *testing.T) {
	repo := newTestRepo(t)
	orch := newFakeOrchestrator(true)
	d := NewDispatcher(repo, orch, 2, 20*time.Millisecond, logger.Nop())
	svc := NewService(repo, d, logger.Nop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := svc.Submit(ctx, validRequest()); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	startDispatcher(t, d)

	waitStarted(t, orch, 2)
	select {
	case id := <-orch.started:
		t.Fatalf("job %s started beyond the limit", id)
	case <-time.After(150 * time.Millisecond):
	}

	close(orch.release)
	waitStarted(t, orch, 2)
	if got := atomic.LoadInt32(&orch.maxActive); got > 2 {
		t.Errorf("max concurrent runs = %d, want <= 2", got)
	}
}

func TestDispatcherCancel(t *testing.T) {
	repo := newTestRepo(t)
	orch := newFakeOrchestrator(true)
	d := NewDispatcher(repo, orch, 1, time.Hour, logger.Nop())
	svc := NewService(repo, d, logger.Nop())
	ctx := context.Background()

	startDispatcher(t, d)
	job, err := svc.Submit(ctx, validRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitStarted(t, orch, 1)

	if d.Cancel("unknown") {
		t.Error("Cancel(unknown) = true")
	}
	if !d.Cancel(job.ID) {
		t.Fatal("Cancel(running) = false")
	}

	deadline := time.Now().Add(5 * time.Second)
	for d.Cancel(job.ID) {
		if time.Now().After(deadline) {
			t.Fatal("cancelled run did not stop")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatcherStopsOnContextDone(t *testing.T) {
	repo := newTestRepo(t)
	orch := newFakeOrchestrator(true)
	d := NewDispatcher(repo, orch, 1, time.Hour, logger.Nop())
	svc := NewService(repo, d, logger.Nop())

	cancel, done := startDispatcher(t, d)
	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitStarted(t, orch, 1)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
		if n := atomic.LoadInt32(&orch.active); n != 0 {
			t.Errorf("Run() returned with %d runs active", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestDispatcherRecoversInterruptedJobs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewService(repo, &fakeDispatcher{}, logger.Nop())

	submit := func() string {
		job, err := svc.Submit(ctx, validRequest())
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		return job.ID
	}

	processing := submit()
	if _, err := repo.Claim(ctx, processing); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	midStage := submit()
	if _, err := repo.Claim(ctx, midStage); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	transcript := &domain.Transcript{JobID: midStage, Text: "Speaker A:\nHallo.\n"}
	if err := repo.Advance(ctx, midStage, domain.StatusProcessing, domain.StatusTranscribed, domain.Artifacts{Transcript: transcript}); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	scheduled := submit()

	orch := newFakeOrchestrator(false)
	d := NewDispatcher(repo, orch, 1, time.Hour, logger.Nop())
	startDispatcher(t, d)

	if ids := waitStarted(t, orch, 1); ids[0] != scheduled {
		t.Errorf("ran %s, want the scheduled job %s", ids[0], scheduled)
	}

	for _, id := range []string{processing, midStage} {
		snap, _ := repo.Status(ctx, id)
		if snap.Status != domain.StatusFailed || !strings.Contains(snap.Reason, "interrupted") {
			t.Errorf("job %s = %+v, want failed as interrupted", id, snap)
		}
	}
	arts, _ := repo.Artifacts(ctx, midStage)
	if arts.Transcript == nil {
		t.Error("transcript of interrupted job was not kept")
	}
}
