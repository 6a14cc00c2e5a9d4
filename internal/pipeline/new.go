package pipeline

import (
	"github.com/nguyentantai21042004/protocol-flow/internal/agent"
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/export"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
	"github.com/nguyentantai21042004/protocol-flow/internal/store"
	"github.com/nguyentantai21042004/protocol-flow/internal/transcription"
)

type implOrchestrator struct {
	repo        store.Repository
	transcriber transcription.Adapter
	agent       agent.Agent
	prompts     *agent.Catalogue
	exporter    export.Exporter
	budgets     config.TokenBudgets
	logger      logger.Logger
}

// Deps are the collaborators of the orchestrator, constructed once per
// process.
type Deps struct {
	Repo        store.Repository
	Transcriber transcription.Adapter
	Agent       agent.Agent
	Prompts     *agent.Catalogue
	Exporter    export.Exporter
	Budgets     config.TokenBudgets
	Logger      logger.Logger
}

func New(d Deps) Orchestrator {
	return &implOrchestrator{
		repo:        d.Repo,
		transcriber: d.Transcriber,
		agent:       d.Agent,
		prompts:     d.Prompts,
		exporter:    d.Exporter,
		budgets:     d.Budgets,
		logger:      d.Logger.With(map[string]interface{}{logger.FieldComponent: "pipeline"}),
	}
}
