// Package loader resolves the statement files named on the command line.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoStatements is returned when a directory holds no PDF files.
var ErrNoStatements = errors.New("no PDF statements found")

// Loader collects statement paths from a single file or a directory.
type Loader struct {
	path string

	// Paths holds the resolved statement files in lexical order.
	Paths []string
}

func New(path string) *Loader {
	return &Loader{
		path:  path,
		Paths: make([]string, 0),
	}
}

// Load resolves the path. A file is taken as is; a directory contributes
// its .pdf files, non-recursively.
func (l *Loader) Load() error {
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("statement path %s: %w", l.path, err)
	}

	if !info.IsDir() {
		l.Paths = append(l.Paths, l.path)
		return nil
	}

	entries, err := os.ReadDir(l.path)
	if err != nil {
		return fmt.Errorf("failed to read statement dir %s: %w", l.path, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".pdf" {
			l.Paths = append(l.Paths, filepath.Join(l.path, entry.Name()))
		}
	}
	if len(l.Paths) == 0 {
		return fmt.Errorf("%s: %w", l.path, ErrNoStatements)
	}
	sort.Strings(l.Paths)
	return nil
}

// Resolve is a shorthand for New(path).Load().
func Resolve(path string) ([]string, error) {
	l := New(path)
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l.Paths, nil
}
