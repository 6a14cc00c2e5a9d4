package export

import (
	"context"
	"io"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Exporter turns the final markdown protocol into a shareable document.
type Exporter interface {
	Export(ctx context.Context, req Request) (domain.DocumentRef, error)
}

// DocumentStore is the external document storage capability.
type DocumentStore interface {
	Put(ctx context.Context, doc Document) (domain.DocumentRef, error)
}

// Request describes one export. Participants are only used as metadata.
type Request struct {
	JobID        string
	Filename     string
	Markdown     string
	Participants []string
}

// Document is the payload handed to a DocumentStore.
type Document struct {
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
	Sharing     string
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
