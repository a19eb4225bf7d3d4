package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// Options configure a Parser.
type Options struct {
	// Cardholder, when set, keeps only rows listed under this cardholder's
	// block (plus rows before any cardholder block).
	Cardholder string
	// Cardholders are additional names that mark the start of a
	// cardholder's block of rows.
	Cardholders []string
}

// Parser converts the page text of one credit card statement into records.
// A Parser has no per-document state and may be shared between goroutines.
type Parser struct {
	classifier *Classifier
	cardholder string
	logger     *zap.Logger
}

// New builds a Parser. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	names := append([]string{}, opts.Cardholders...)
	if opts.Cardholder != "" {
		names = append(names, opts.Cardholder)
	}
	return &Parser{
		classifier: NewClassifier(names),
		cardholder: collapseSpaces(opts.Cardholder),
		logger:     logger,
	}
}

// Parse reads pages in order and returns the document's records. Rows that
// fail their section grammar are dropped and listed in Document.Skipped.
// ErrUnsupportedFormat is returned when no section header is found.
func (p *Parser) Parse(id string, pages []string) (*models.Document, error) {
	asm := newAssembler(id, p.keepCardholder)
	m := newMachine(asm)
	log := p.logger.With(zap.String("document", id))

	for _, line := range SplitLines(pages) {
		tok := p.classifier.Classify(line, m.open())
		if ce := log.Check(zap.DebugLevel, "classified line"); ce != nil {
			ce.Write(
				zap.Int("page", line.Page+1),
				zap.Int("line", line.Index+1),
				zap.String("token", fmt.Sprintf("%T", tok)),
			)
		}
		m.feed(tok)
	}
	m.close()
	asm.finish()

	if !m.sawHeader {
		return nil, ErrUnsupportedFormat
	}

	doc := &models.Document{
		ID:             id,
		Records:        asm.records,
		Rewards:        m.rewards,
		PointsReversed: asm.reversed,
	}
	if m.period != nil {
		doc.PeriodStart, doc.PeriodEnd = m.period.Start, m.period.End
	}
	for _, f := range asm.failures {
		log.Warn("dropped transaction row",
			zap.Int("page", f.Page),
			zap.Int("line", f.Line),
			zap.String("text", f.Text),
			zap.Error(f.Err),
		)
		doc.Skipped = append(doc.Skipped, models.SkippedRow{
			Page:   f.Page,
			Line:   f.Line,
			Text:   f.Text,
			Reason: f.Err.Error(),
		})
	}

	log.Debug("parsed statement",
		zap.Int("records", len(doc.Records)),
		zap.Int("skipped", len(doc.Skipped)),
		zap.Bool("rewardSummary", doc.Rewards.Found),
	)
	return doc, nil
}

func (p *Parser) keepCardholder(name string) bool {
	if p.cardholder == "" || name == "" {
		return true
	}
	return strings.EqualFold(name, p.cardholder)
}
