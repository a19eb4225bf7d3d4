package pipeline

import (
	"context"
	"fmt"

	"github.com/insightdelivered/cc-statement-parser/internal/extractor"
)

// Source yields the page text of a statement by identifier.
type Source interface {
	Pages(ctx context.Context, id string) ([]string, error)
}

// FileSource reads statements from disk; the identifier is the file path.
type FileSource struct {
	Extractor *extractor.Extractor
	Password  string
}

func (s FileSource) Pages(ctx context.Context, path string) ([]string, error) {
	return s.Extractor.ExtractFile(ctx, path, s.Password)
}

// UploadSource reads statements held in memory, keyed by file name.
type UploadSource struct {
	Extractor *extractor.Extractor
	Password  string
	Files     map[string][]byte
}

func (s UploadSource) Pages(ctx context.Context, name string) ([]string, error) {
	data, ok := s.Files[name]
	if !ok {
		return nil, fmt.Errorf("no upload named %q", name)
	}
	return s.Extractor.ExtractBytes(ctx, data, s.Password)
}

// TextSource serves already extracted page text.
type TextSource map[string][]string

func (s TextSource) Pages(_ context.Context, id string) ([]string, error) {
	pages, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("no text for %q", id)
	}
	return pages, nil
}
