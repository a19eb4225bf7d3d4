package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement dates are DD/MM/YYYY, optionally followed by a time of day.
var (
	dateLayout         = "02/01/2006"
	dateTimeLayout     = "02/01/2006 15:04:05"
	dateTimeLayoutNoSS = "02/01/2006 15:04"

	// leadingDatePattern captures the date, the optional time and the rest of the line.
	leadingDatePattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})(?:\s+(\d{2}:\d{2}(?::\d{2})?))?(?:\s+(.*))?$`)

	// periodPattern matches "Billing Period: 01/01/2024 - 31/01/2024" style lines.
	periodPattern = regexp.MustCompile(`(?i)^(?:billing|statement)\s+period\s*:?\s*(\d{2}/\d{2}/\d{4})\s*(?:-|to)\s*(\d{2}/\d{2}/\d{4})`)
)

// Amount cells: "1,234.56", "₹1,234.56", "1,234.56Cr".
var (
	amountCellPattern  = regexp.MustCompile(`^(?:₹|Rs\.?)?([\d,]+\.\d{2})(?i:(cr))?$`)
	decimalCellPattern = regexp.MustCompile(`^[\d,]+\.\d+$`)
	integerCellPattern = regexp.MustCompile(`^[\d,]+$`)
	currencyPattern    = regexp.MustCompile(`^[A-Z]{3}$`)
)

var errEmptyAmount = errors.New("empty amount")

// parseAmount converts a string like "1,234.56" or "₹1,234.56" to a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space

	if s == "" || s == "-" {
		return decimal.Zero, errEmptyAmount
	}
	return decimal.NewFromString(s)
}

// parseInteger parses reward point style integers ("1,234").
func parseInteger(s string) (int64, bool) {
	if !integerCellPattern.MatchString(s) {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return d.IntPart(), true
}

// parseStatementDate parses a DD/MM/YYYY date with an optional time.
func parseStatementDate(date, clock string) (time.Time, error) {
	if clock == "" {
		return time.Parse(dateLayout, date)
	}
	if len(clock) == len("15:04") {
		return time.Parse(dateTimeLayoutNoSS, date+" "+clock)
	}
	return time.Parse(dateTimeLayout, date+" "+clock)
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	line = strings.ReplaceAll(line, "\t", " ")
	return strings.TrimSpace(line)
}

// collapseSpaces trims and joins runs of whitespace into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
