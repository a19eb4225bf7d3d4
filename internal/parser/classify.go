package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// sectionHeaders maps the captions that open each section. A line matches
// when it equals a caption ignoring case, or is the caption followed only by
// a continuation or currency note such as "(contd.)". Wrapped text like
// "Bill Payment reference" therefore stays a description.
var sectionHeaders = []struct {
	caption string
	kind    models.SectionKind
}{
	{"Domestic Transactions", models.SectionDomestic},
	{"International Transactions", models.SectionInternational},
	{"Reward Points Summary", models.SectionRewardPoints},
	{"Reward Points Details", models.SectionRewardPoints},
	{"Bill Payment", models.SectionBillPayment},
	{"Payments Received", models.SectionBillPayment},
}

var statementEndPattern = regexp.MustCompile(`(?i)^\**\s*end of statement\b`)

// Lines that never carry transaction data.
var (
	pageNumberPattern    = regexp.MustCompile(`(?i)^page\s*\d+(\s*(of|/)\s*\d+)?$`)
	columnCaptionPattern = regexp.MustCompile(`(?i)^date\b.*\b(description|details|amount)\b`)
	totalRowPattern      = regexp.MustCompile(`(?i)^(grand\s+)?total\b(\s*:?\s*$|.*\d\.\d{2})`)
	continuedPattern     = regexp.MustCompile(`(?i)^\(?\s*(continued|contd\.?)\b`)
	currencyNotePattern  = regexp.MustCompile(`(?i)^\(?\s*(amount\s+)?in\s+(rs\.?|inr)\s*\)?$`)
)

// rewardLabelPattern matches "Points Earned 1,234" style reward rows.
var rewardLabelPattern = regexp.MustCompile(`(?i)^(opening balance|points earned|earned|points redeemed|redeemed|points expired|expired|closing balance)\s*:?\s*([\d,]+)$`)

// Classifier turns raw lines into tokens. It holds no per-document state and
// is safe for concurrent use.
type Classifier struct {
	cardholders map[string]string
}

// NewClassifier returns a Classifier that recognises the given cardholder
// names as block markers.
func NewClassifier(cardholders []string) *Classifier {
	c := &Classifier{cardholders: make(map[string]string)}
	for _, name := range cardholders {
		key := strings.ToUpper(collapseSpaces(name))
		if key != "" {
			c.cardholders[key] = collapseSpaces(name)
		}
	}
	return c
}

// Classify maps one line to a token. open reports whether a section is
// active with a transaction pending; only then can a line be a continuation.
// Unmatched lines degrade to Noise.
func (c *Classifier) Classify(line RawLine, open bool) LineToken {
	text := normalizeLine(line.Text)
	if text == "" {
		return Noise{Raw: line}
	}

	if kind, ok := matchSectionHeader(text); ok {
		return SectionHeader{Raw: line, Kind: kind}
	}
	if statementEndPattern.MatchString(text) {
		return StatementEnd{Raw: line}
	}
	if m := periodPattern.FindStringSubmatch(text); m != nil {
		start, err1 := parseStatementDate(m[1], "")
		end, err2 := parseStatementDate(m[2], "")
		if err1 == nil && err2 == nil && !end.Before(start) {
			return PeriodMarker{Raw: line, Start: start, End: end}
		}
	}
	if name, ok := c.cardholders[strings.ToUpper(collapseSpaces(text))]; ok {
		return CardholderMarker{Raw: line, Name: name}
	}

	if m := leadingDatePattern.FindStringSubmatch(text); m != nil {
		if date, err := parseStatementDate(m[1], m[2]); err == nil {
			return TransactionStart{Raw: line, Date: date, Tail: collapseSpaces(m[3])}
		}
	}

	if isNoise(text) {
		return Noise{Raw: line, EndsTable: totalRowPattern.MatchString(text)}
	}

	if row, ok := parseRewardRow(line, text); ok {
		return row
	}

	if open {
		return Continuation{Raw: line, Text: collapseSpaces(text)}
	}
	return Noise{Raw: line}
}

func matchSectionHeader(text string) (models.SectionKind, bool) {
	text = collapseSpaces(text)
	for _, h := range sectionHeaders {
		if strings.EqualFold(text, h.caption) {
			return h.kind, true
		}
		if len(text) > len(h.caption) && strings.EqualFold(text[:len(h.caption)], h.caption) && isHeaderNote(text[len(h.caption):]) {
			return h.kind, true
		}
	}
	return models.SectionUnknown, false
}

// isHeaderNote reports whether rest, the text after a caption, is only a
// continuation or currency note.
func isHeaderNote(rest string) bool {
	if rest == "" || rest[0] != ' ' {
		return false
	}
	rest = strings.TrimLeft(rest, " -:")
	return continuedPattern.MatchString(rest) || currencyNotePattern.MatchString(rest)
}

func isNoise(text string) bool {
	return pageNumberPattern.MatchString(text) ||
		columnCaptionPattern.MatchString(text) ||
		totalRowPattern.MatchString(text) ||
		continuedPattern.MatchString(text) ||
		currencyNotePattern.MatchString(text)
}

// parseRewardRow recognises either a labelled value or a bare row of three
// to five integers (opening, earned, [redeemed, [expired,]] closing).
func parseRewardRow(line RawLine, text string) (RewardRow, bool) {
	if m := rewardLabelPattern.FindStringSubmatch(text); m != nil {
		n, ok := parseInteger(m[2])
		if !ok {
			return RewardRow{}, false
		}
		return RewardRow{Raw: line, Label: strings.ToLower(m[1]), Values: []int64{n}}, true
	}

	fields := strings.Fields(text)
	if len(fields) < 3 || len(fields) > 5 {
		return RewardRow{}, false
	}
	values := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, ok := parseInteger(f)
		if !ok {
			return RewardRow{}, false
		}
		values = append(values, n)
	}
	return RewardRow{Raw: line, Values: values}, true
}
