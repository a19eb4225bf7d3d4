package parser

import (
	"time"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// LineToken is the classification of a single RawLine. The concrete types
// below are the only implementations.
type LineToken interface {
	Source() RawLine
}

// SectionHeader opens a statement section.
type SectionHeader struct {
	Raw  RawLine
	Kind models.SectionKind
}

// TransactionStart is a row that begins with a statement date.
type TransactionStart struct {
	Raw  RawLine
	Date time.Time
	Tail string
}

// Continuation wraps the description of the pending transaction.
type Continuation struct {
	Raw  RawLine
	Text string
}

// RewardRow is a numeric row from the reward points summary.
type RewardRow struct {
	Raw    RawLine
	Label  string
	Values []int64
}

// CardholderMarker names the cardholder whose rows follow.
type CardholderMarker struct {
	Raw  RawLine
	Name string
}

// PeriodMarker carries the statement billing period.
type PeriodMarker struct {
	Raw        RawLine
	Start, End time.Time
}

// StatementEnd closes the statement; nothing after it is parsed.
type StatementEnd struct {
	Raw RawLine
}

// Noise is anything that carries no transaction data. Totals rows set
// EndsTable so the pending transaction is closed.
type Noise struct {
	Raw       RawLine
	EndsTable bool
}

func (t SectionHeader) Source() RawLine    { return t.Raw }
func (t TransactionStart) Source() RawLine { return t.Raw }
func (t Continuation) Source() RawLine     { return t.Raw }
func (t RewardRow) Source() RawLine        { return t.Raw }
func (t CardholderMarker) Source() RawLine { return t.Raw }
func (t PeriodMarker) Source() RawLine     { return t.Raw }
func (t StatementEnd) Source() RawLine     { return t.Raw }
func (t Noise) Source() RawLine            { return t.Raw }
