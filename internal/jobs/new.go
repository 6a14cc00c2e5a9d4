package jobs

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
	"github.com/nguyentantai21042004/protocol-flow/internal/pipeline"
	"github.com/nguyentantai21042004/protocol-flow/internal/store"
)

type implService struct {
	repo       store.Repository
	dispatcher Dispatcher
	logger     logger.Logger
}

// NewService creates the job service. Submitted and enqueued jobs wake the
// dispatcher.
func NewService(repo store.Repository, d Dispatcher, log logger.Logger) Service {
	return &implService{
		repo:       repo,
		dispatcher: d,
		logger:     log.With(map[string]interface{}{logger.FieldComponent: "jobs"}),
	}
}

type implDispatcher struct {
	repo         store.Repository
	pipeline     pipeline.Orchestrator
	slots        runSlots
	pollInterval time.Duration
	wake         chan struct{}
	logger       logger.Logger

	mu      sync.Mutex
	running map[string]func()
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher running at most maxConcurrent jobs at a
// time.
func NewDispatcher(repo store.Repository, p pipeline.Orchestrator, maxConcurrent int, pollInterval time.Duration, log logger.Logger) Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	return &implDispatcher{
		repo:         repo,
		pipeline:     p,
		slots:        newRunSlots(maxConcurrent),
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
		logger:       log.With(map[string]interface{}{logger.FieldComponent: "dispatcher"}),
		running:      make(map[string]func()),
	}
}
