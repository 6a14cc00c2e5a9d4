package export

import (
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

type implExporter struct {
	cfg     config.ExportConfig
	store   DocumentStore
	scratch string
	logger  logger.Logger
}

// New creates an Exporter writing intermediate files below scratchDir.
func New(cfg config.ExportConfig, store DocumentStore, scratchDir string, log logger.Logger) Exporter {
	return &implExporter{
		cfg:     cfg,
		store:   store,
		scratch: scratchDir,
		logger:  log.With(map[string]interface{}{logger.FieldComponent: "export"}),
	}
}
