package transcription

import (
	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
	"github.com/nguyentantai21042004/protocol-flow/pkg/executor"
)

type implAdapter struct {
	cfg      config.TranscriptionConfig
	scratch  string
	executor executor.Executor
	engine   Engine
	cache    cache.Store
	logger   logger.Logger
}

// New creates a transcription Adapter. Temporary audio is written below
// scratchDir and removed after every attempt.
func New(cfg config.TranscriptionConfig, scratchDir string, exec executor.Executor, engine Engine, store cache.Store, log logger.Logger) Adapter {
	if store == nil {
		store = cache.Nop()
	}
	return &implAdapter{
		cfg:      cfg,
		scratch:  scratchDir,
		executor: exec,
		engine:   engine,
		cache:    store,
		logger:   log.With(map[string]interface{}{logger.FieldComponent: "transcription"}),
	}
}
