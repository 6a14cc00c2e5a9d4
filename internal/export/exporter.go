package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Export converts req.Markdown to docx and uploads it under the configured
// folder with the configured sharing policy.
func (e *implExporter) Export(ctx context.Context, req Request) (domain.DocumentRef, error) {
	if strings.TrimSpace(req.Markdown) == "" {
		return domain.DocumentRef{}, domain.ExportError("export", errors.New("protocol text is empty"))
	}
	name := strings.TrimSpace(req.Filename)
	if name == "" {
		name = req.JobID
	}

	if err := os.MkdirAll(e.scratch, 0755); err != nil {
		return domain.DocumentRef{}, domain.ExportError("create scratch dir", err)
	}
	dir, err := os.MkdirTemp(e.scratch, "export-")
	if err != nil {
		return domain.DocumentRef{}, domain.ExportError("create temp dir", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "protocol.docx")
	if err := markdownToDocx(name, req.Participants, req.Markdown, out, e.cfg.Font); err != nil {
		return domain.DocumentRef{}, domain.ExportError("convert markdown", err)
	}

	f, err := os.Open(out)
	if err != nil {
		return domain.DocumentRef{}, domain.ExportError("open document", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return domain.DocumentRef{}, domain.ExportError("stat document", err)
	}

	callCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	key := path.Join(e.cfg.Folder, req.JobID, name+".docx")
	ref, err := e.store.Put(callCtx, Document{
		Key:         key,
		ContentType: docxContentType,
		Body:        f,
		Size:        info.Size(),
		Sharing:     e.cfg.Sharing,
	})
	if err != nil {
		return domain.DocumentRef{}, domain.ExportError("upload", err)
	}
	if ref.URL == "" {
		return domain.DocumentRef{}, domain.ExportError("upload", fmt.Errorf("document store returned no URL for %s", key))
	}

	e.logger.Info(ctx, "Exported %s -> %s", name, ref.URL)
	return ref, nil
}
