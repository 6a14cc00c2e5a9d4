package export

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// LocalStore keeps documents on the local filesystem. With a base URL the
// returned link points at a file server exposing dir.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve document dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &LocalStore{dir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, doc Document) (domain.DocumentRef, error) {
	rel := filepath.Clean("/" + doc.Key)[1:]
	fullPath := filepath.Join(s.dir, rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return domain.DocumentRef{}, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, doc.Body); err != nil {
		f.Close()
		return domain.DocumentRef{}, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return domain.DocumentRef{}, fmt.Errorf("close file: %w", err)
	}

	ref := domain.DocumentRef{ID: rel}
	if s.baseURL != "" {
		ref.URL = s.baseURL + (&url.URL{Path: "/" + filepath.ToSlash(rel)}).EscapedPath()
	} else {
		ref.URL = (&url.URL{Scheme: "file", Path: fullPath}).String()
	}
	return ref, nil
}
