package parser

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

type pendingRecord struct {
	start      TransactionStart
	section    models.SectionKind
	cardholder string
	fields     rowFields
	grammarErr error
	extra      []string
}

// builtRecord is a record waiting for the end of the document, when the
// billing period is known.
type builtRecord struct {
	rec      models.TransactionRecord
	raw      RawLine
	reversed int64
}

// assembler builds TransactionRecords from a start token plus any
// continuation tokens that follow it.
type assembler struct {
	document string
	keep     func(cardholder string) bool

	periodStart, periodEnd time.Time

	pending  *pendingRecord
	built    []builtRecord
	records  []models.TransactionRecord
	failures []*RowParseError
	reversed int64
}

func newAssembler(document string, keep func(string) bool) *assembler {
	return &assembler{document: document, keep: keep}
}

func (a *assembler) setPeriod(start, end time.Time) {
	a.periodStart, a.periodEnd = start, end
}

// start finalises any pending record and begins a new one.
func (a *assembler) start(tok TransactionStart, section models.SectionKind, cardholder string) {
	a.finalize()

	fields, err := parseRow(section, tok.Tail)
	a.pending = &pendingRecord{
		start:      tok,
		section:    section,
		cardholder: cardholder,
		fields:     fields,
		grammarErr: err,
	}
}

// extend appends wrapped description text to the pending record.
func (a *assembler) extend(tok Continuation) {
	if a.pending == nil {
		return
	}
	a.pending.extra = append(a.pending.extra, tok.Text)
}

func (a *assembler) hasPending() bool {
	return a.pending != nil
}

// finalize emits the pending record, or records why it was dropped.
func (a *assembler) finalize() {
	p := a.pending
	if p == nil {
		return
	}
	a.pending = nil

	rec, err := a.build(p)
	if err != nil {
		a.fail(p.start.Raw, err)
		return
	}
	if a.keep != nil && !a.keep(rec.Cardholder) {
		return
	}
	b := builtRecord{rec: rec, raw: p.start.Raw}
	if p.fields.reversal {
		b.reversed = p.fields.points
	}
	a.built = append(a.built, b)
}

// finish checks every record against the billing period, wherever the
// period line appeared, and fills records and reversed. Failures end up in
// line order.
func (a *assembler) finish() {
	a.finalize()
	for _, b := range a.built {
		if !a.periodStart.IsZero() && !a.withinPeriod(b.rec.Date) {
			a.fail(b.raw, ErrOutsidePeriod)
			continue
		}
		a.records = append(a.records, b.rec)
		a.reversed += b.reversed
	}
	a.built = nil

	slices.SortStableFunc(a.failures, func(x, y *RowParseError) int {
		return cmp.Or(cmp.Compare(x.Page, y.Page), cmp.Compare(x.Line, y.Line))
	})
}

func (a *assembler) fail(raw RawLine, err error) {
	a.failures = append(a.failures, &RowParseError{
		Page: raw.Page + 1,
		Line: raw.Index + 1,
		Text: normalizeLine(raw.Text),
		Err:  err,
	})
}

func (a *assembler) build(p *pendingRecord) (models.TransactionRecord, error) {
	if p.grammarErr != nil {
		return models.TransactionRecord{}, p.grammarErr
	}

	parts := append([]string{p.fields.description}, p.extra...)
	desc := collapseSpaces(strings.Join(parts, " "))
	if desc == "" {
		return models.TransactionRecord{}, ErrEmptyDescription
	}

	if p.fields.amountText == "" {
		return models.TransactionRecord{}, ErrMissingAmount
	}
	amount, err := parseAmount(p.fields.amountText)
	if err != nil {
		if errors.Is(err, errEmptyAmount) {
			return models.TransactionRecord{}, ErrMissingAmount
		}
		return models.TransactionRecord{}, ErrMalformedAmount
	}
	if p.fields.credit {
		amount = amount.Neg()
	}

	points := p.fields.points
	if p.fields.reversal {
		points = 0
	}

	return models.TransactionRecord{
		Date:            p.start.Date,
		Description:     desc,
		RewardPoints:    points,
		Amount:          amount,
		Section:         p.section,
		SourceDocument:  a.document,
		Cardholder:      p.cardholder,
		ForeignCurrency: p.fields.foreignCurrency,
		ForeignAmount:   p.fields.foreignAmount,
		ConversionRate:  p.fields.conversionRate,
	}, nil
}

// withinPeriod compares calendar days, ignoring the time of day.
func (a *assembler) withinPeriod(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(a.periodStart) && !day.After(a.periodEnd)
}
