package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// rowFields is the result of splitting a transaction-start tail according to
// its section's grammar. Amount text is kept raw and parsed on finalisation.
type rowFields struct {
	description string
	amountText  string
	credit      bool
	points      int64
	reversal    bool

	foreignCurrency string
	foreignAmount   decimal.Decimal
	conversionRate  decimal.Decimal
}

// parseRow applies the row grammar for the section.
//
//	Domestic / bill payment: description [points] amount [Cr]
//	International:           description foreign-amount currency [rate] [points] amount [Cr]
//
// The foreign amount and currency code may appear in either order.
func parseRow(section models.SectionKind, tail string) (rowFields, error) {
	fields := strings.Fields(tail)
	var row rowFields

	fields = row.takeAmount(fields)
	fields = row.takePoints(fields)

	if section == models.SectionInternational {
		rest, ok := row.takeForeign(fields)
		if !ok {
			row.description = strings.Join(fields, " ")
			return row, ErrRowGrammar
		}
		fields = rest
	}

	row.description = strings.Join(fields, " ")
	return row, nil
}

// takeAmount pops the trailing amount and credit marker.
func (r *rowFields) takeAmount(fields []string) []string {
	n := len(fields)
	if n > 0 && strings.EqualFold(fields[n-1], "Cr") {
		r.credit = true
		fields = fields[:n-1]
		n--
	}
	if n == 0 {
		return fields
	}
	if m := amountCellPattern.FindStringSubmatch(fields[n-1]); m != nil {
		r.amountText = m[1]
		if m[2] != "" {
			r.credit = true
		}
		return fields[:n-1]
	}
	return fields
}

// takePoints pops a reward points column. "- 12" and "-12" are reversals.
func (r *rowFields) takePoints(fields []string) []string {
	n := len(fields)
	if n == 0 || r.amountText == "" {
		return fields
	}
	last := fields[n-1]
	negative := false
	if strings.HasPrefix(last, "-") && len(last) > 1 {
		negative = true
		last = last[1:]
	}
	pts, ok := parseInteger(last)
	if !ok {
		return fields
	}
	fields = fields[:n-1]
	if !negative && len(fields) > 0 && fields[len(fields)-1] == "-" {
		negative = true
		fields = fields[:len(fields)-1]
	}
	r.points = pts
	r.reversal = negative
	return fields
}

// takeForeign pops the foreign amount, currency and optional conversion rate.
func (r *rowFields) takeForeign(fields []string) ([]string, bool) {
	n := len(fields)
	at := func(i int) string {
		if i < 0 || i >= n {
			return ""
		}
		return fields[i]
	}
	isAmt := func(s string) bool { return decimalCellPattern.MatchString(s) }
	isCur := func(s string) bool { return currencyPattern.MatchString(s) }

	var amt, cur, rate string
	consumed := 0

	last := at(n - 1)
	if strings.HasPrefix(last, "@") && isAmt(strings.TrimPrefix(last, "@")) {
		rate = strings.TrimPrefix(last, "@")
		n--
		consumed = 1
		last = at(n - 1)
	}

	switch {
	case rate == "" && isAmt(last) && isCur(at(n-2)) && isAmt(at(n-3)):
		// amount currency rate
		rate, cur, amt = last, at(n-2), at(n-3)
		consumed += 3
	case isAmt(last) && isCur(at(n-2)):
		// currency amount
		amt, cur = last, at(n-2)
		consumed += 2
	case isCur(last) && isAmt(at(n-2)):
		// amount currency
		cur, amt = last, at(n-2)
		consumed += 2
	case rate == "" && isAmt(last) && isAmt(at(n-2)) && isCur(at(n-3)):
		// currency amount rate
		rate, amt, cur = last, at(n-2), at(n-3)
		consumed += 3
	default:
		return fields, false
	}

	foreign, err := parseAmount(amt)
	if err != nil {
		return fields, false
	}
	r.foreignAmount = foreign
	r.foreignCurrency = cur
	if rate != "" {
		if d, err := parseAmount(rate); err == nil {
			r.conversionRate = d
		}
	}
	return fields[:len(fields)-consumed], true
}
