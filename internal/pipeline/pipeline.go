// Package pipeline parses many statements concurrently and collates the
// results in a deterministic order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/cc-statement-parser/internal/category"
	"github.com/insightdelivered/cc-statement-parser/internal/collate"
	"github.com/insightdelivered/cc-statement-parser/internal/models"
	"github.com/insightdelivered/cc-statement-parser/internal/parser"
	"github.com/insightdelivered/cc-statement-parser/internal/summary"
)

// ErrNoDocuments is returned when not a single statement could be parsed.
var ErrNoDocuments = errors.New("no statement could be parsed")

// Failure is a statement that could not be parsed.
type Failure struct {
	ID  string
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.ID, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result holds the parsed documents in collated order and the failures in
// input order.
type Result struct {
	Documents []models.Document
	Failures  []Failure
}

// Records returns the records of all documents in collated order.
func (r *Result) Records() []models.TransactionRecord {
	return collate.Records(r.Documents)
}

// Summarize categorises the collated records and aggregates them together
// with each document's reward-points block. A nil cfg leaves records
// uncategorised and the summary without a category breakdown.
func (r *Result) Summarize(cfg *category.Config) ([]models.CategorizedRecord, models.Summary) {
	var (
		records []models.CategorizedRecord
		parts   = make([]models.Summary, 0, len(r.Documents))
	)
	for i := range r.Documents {
		doc := &r.Documents[i]
		categorized := category.Apply(doc.Records, cfg)
		records = append(records, categorized...)
		parts = append(parts, summary.ForDocument(doc, categorized))
	}
	return records, summary.Merge(parts...)
}

// Runner parses statements on a bounded pool of workers.
type Runner struct {
	source  Source
	parser  *parser.Parser
	workers int
	logger  *zap.Logger
}

// NewRunner builds a Runner. workers <= 0 uses one worker per CPU.
func NewRunner(source Source, p *parser.Parser, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{source: source, parser: p, workers: workers, logger: logger}
}

// Run parses every identifier. A failing statement is recorded in
// Result.Failures and does not stop the others. The output order depends
// only on ids and key, never on which worker finishes first.
// ErrNoDocuments is returned together with the result when every
// statement failed.
func (r *Runner) Run(ctx context.Context, ids []string, key *collate.SortKey) (*Result, error) {
	type outcome struct {
		doc *models.Document
		err error
	}
	outcomes := make([]outcome, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(min(r.workers, max(len(ids), 1)))

	start := time.Now()
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				return nil
			}
			doc, err := r.parseOne(ctx, id)
			outcomes[i] = outcome{doc: doc, err: err}
			return nil
		})
	}
	// Workers report through outcomes, so Wait has nothing to return.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	docs := make([]models.Document, 0, len(ids))
	for i, o := range outcomes {
		if o.err != nil {
			r.logger.Error("failed to parse statement", zap.String("document", ids[i]), zap.Error(o.err))
			res.Failures = append(res.Failures, Failure{ID: ids[i], Err: o.err})
			continue
		}
		docs = append(docs, *o.doc)
	}
	res.Documents = collate.Collate(docs, key)

	r.logger.Info("parsed statements",
		zap.Int("documents", len(res.Documents)),
		zap.Int("failed", len(res.Failures)),
		zap.Int("workers", r.workers),
		zap.Duration("elapsed", time.Since(start)),
	)

	if len(res.Documents) == 0 {
		return res, ErrNoDocuments
	}
	return res, nil
}

func (r *Runner) parseOne(ctx context.Context, id string) (*models.Document, error) {
	pages, err := r.source.Pages(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.parser.Parse(id, pages)
}
