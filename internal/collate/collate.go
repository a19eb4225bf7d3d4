// Package collate merges parsed documents into one ordered record stream.
package collate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// specifierPatterns maps the strftime specifiers usable in a sort format to
// the text they match inside a filename.
var specifierPatterns = map[byte]string{
	'Y': `\d{4}`,
	'y': `\d{2}`,
	'm': `\d{2}`,
	'd': `\d{2}`,
	'e': `[ \d]\d`,
	'H': `\d{2}`,
	'M': `\d{2}`,
	'S': `\d{2}`,
	'j': `\d{3}`,
	'b': `[A-Za-z]{3}`,
	'h': `[A-Za-z]{3}`,
	'B': `[A-Za-z]+`,
	'z': `[+\-]\d{4}`,
	'Z': `[A-Z]{3}`,
}

// SortKey extracts a date from a document identifier using a strftime format.
type SortKey struct {
	layout  string
	pattern *regexp.Regexp
}

// NewSortKey compiles a strftime format such as "%d-%m-%Y".
func NewSortKey(format string) (*SortKey, error) {
	if format == "" {
		return nil, fmt.Errorf("empty sort format")
	}

	layout, err := strftime.Layout(format)
	if err != nil {
		return nil, fmt.Errorf("sort format %q: %w", format, err)
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteString(regexp.QuoteMeta(format[i : i+1]))
			continue
		}
		if i+1 == len(format) {
			return nil, fmt.Errorf("sort format %q: trailing %%", format)
		}
		i++
		if format[i] == '%' {
			b.WriteString("%")
			continue
		}
		p, ok := specifierPatterns[format[i]]
		if !ok {
			return nil, fmt.Errorf("sort format %q: unsupported specifier %%%c", format, format[i])
		}
		b.WriteString(p)
	}

	pattern, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("sort format %q: %w", format, err)
	}
	return &SortKey{layout: layout, pattern: pattern}, nil
}

// Date finds and parses the first date in the identifier's base name.
func (k *SortKey) Date(id string) (time.Time, bool) {
	match := k.pattern.FindString(filepath.Base(id))
	if match == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(k.layout, match)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Collate orders documents. Without a key the input order is kept. With a
// key, documents whose identifier carries a date are stably sorted by it
// among their own positions; the others stay where they were.
func Collate(docs []models.Document, key *SortKey) []models.Document {
	out := make([]models.Document, len(docs))
	copy(out, docs)
	if key == nil {
		return out
	}

	type dated struct {
		doc  models.Document
		date time.Time
	}
	var (
		slots []int
		items []dated
	)
	for i, d := range docs {
		if t, ok := key.Date(d.ID); ok {
			slots = append(slots, i)
			items = append(items, dated{doc: d, date: t})
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].date.Before(items[b].date)
	})
	for n, slot := range slots {
		out[slot] = items[n].doc
	}
	return out
}

// Records flattens documents into one record sequence, document order first
// and in-document order second.
func Records(docs []models.Document) []models.TransactionRecord {
	var n int
	for _, d := range docs {
		n += len(d.Records)
	}
	out := make([]models.TransactionRecord, 0, n)
	for _, d := range docs {
		out = append(out, d.Records...)
	}
	return out
}
