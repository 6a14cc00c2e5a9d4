package export

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/protocol-flow/internal/config"
)

// NewDocumentStore builds the backend selected by cfg.Backend.
func NewDocumentStore(ctx context.Context, cfg config.ExportConfig) (DocumentStore, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "local":
		return NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown export backend: %s", cfg.Backend)
	}
}
