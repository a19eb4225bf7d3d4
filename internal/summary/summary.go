// Package summary folds categorised records into spending totals.
//
// Aggregation is a pure fold: partial summaries of any partition of the
// records can be combined with Merge and give the same result as
// aggregating everything at once.
package summary

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// paymentMarkers identify card bill payments listed among ordinary credits.
var paymentMarkers = []string{
	"PAYMENT RECEIVED",
	"CREDIT CARD PAYMENT",
	"CC PAYMENT",
	"NETBANKING TRANSFER",
	"AUTOPAY",
	"BPPY",
}

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.New(1, -2)
)

// IsPayment reports whether the record is a payment towards the card bill.
func IsPayment(r models.TransactionRecord) bool {
	if r.Section == models.SectionBillPayment {
		return true
	}
	if !r.Amount.IsNegative() {
		return false
	}
	desc := strings.ToUpper(r.Description)
	for _, m := range paymentMarkers {
		if strings.Contains(desc, m) {
			return true
		}
	}
	return false
}

// IsSpend reports whether the record counts towards spending: a debit that
// is not a bill payment.
func IsSpend(r models.TransactionRecord) bool {
	return r.Amount.IsPositive() && !IsPayment(r)
}

// Aggregate computes the summary of records. The category breakdown is
// present only when the records carry categories.
func Aggregate(records []models.CategorizedRecord) models.Summary {
	s := models.Summary{
		TotalSpent:       decimal.Zero,
		TotalBillPayment: decimal.Zero,
	}

	for _, r := range records {
		s.TotalPointsEarned += r.RewardPoints

		if r.Category != "" && s.CategoryTotals == nil {
			s.CategoryTotals = make(map[string]models.CategoryTotal)
		}

		switch {
		case IsPayment(r.TransactionRecord):
			s.TotalBillPayment = s.TotalBillPayment.Add(r.Amount.Abs())
		case IsSpend(r.TransactionRecord):
			s.TotalSpent = s.TotalSpent.Add(r.Amount)
			s.TransactionCount++
			if r.Category != "" {
				ct := s.CategoryTotals[r.Category]
				ct.Amount = ct.Amount.Add(r.Amount)
				s.CategoryTotals[r.Category] = ct
			}
		}
	}

	return withPercentages(s)
}

// FromRewards turns a reward-points summary block into a partial summary that
// only carries the points earned.
func FromRewards(r models.RewardSummary) models.Summary {
	return models.Summary{
		TotalSpent:        decimal.Zero,
		TotalBillPayment:  decimal.Zero,
		TotalPointsEarned: r.Earned,
	}
}

// Merge adds partial summaries element-wise and recomputes percentages.
func Merge(parts ...models.Summary) models.Summary {
	out := models.Summary{
		TotalSpent:       decimal.Zero,
		TotalBillPayment: decimal.Zero,
	}
	for _, p := range parts {
		out.TotalSpent = out.TotalSpent.Add(p.TotalSpent)
		out.TotalBillPayment = out.TotalBillPayment.Add(p.TotalBillPayment)
		out.TotalPointsEarned += p.TotalPointsEarned
		out.TransactionCount += p.TransactionCount

		if p.CategoryTotals == nil {
			continue
		}
		if out.CategoryTotals == nil {
			out.CategoryTotals = make(map[string]models.CategoryTotal, len(p.CategoryTotals))
		}
		for name, ct := range p.CategoryTotals {
			cur := out.CategoryTotals[name]
			cur.Amount = cur.Amount.Add(ct.Amount)
			out.CategoryTotals[name] = cur
		}
	}
	return withPercentages(out)
}

// ForDocument summarises a parsed document: its categorised records plus
// the points from its reward summary block.
func ForDocument(doc *models.Document, records []models.CategorizedRecord) models.Summary {
	return Merge(Aggregate(records), FromRewards(doc.Rewards))
}

// withPercentages sets each category's share of TotalSpent to two places.
// Shares are floored, then the hundredths left over go to the largest
// remainders, so categories that cover all spend add up to exactly 100.
func withPercentages(s models.Summary) models.Summary {
	if len(s.CategoryTotals) == 0 {
		return s
	}
	if s.TotalSpent.IsZero() {
		for name, ct := range s.CategoryTotals {
			ct.Percentage = decimal.Zero
			s.CategoryTotals[name] = ct
		}
		return s
	}

	type share struct {
		name      string
		remainder decimal.Decimal
	}
	shares := make([]share, 0, len(s.CategoryTotals))
	covered, assigned := decimal.Zero, decimal.Zero
	for name, ct := range s.CategoryTotals {
		exact := ct.Amount.Mul(hundred).Div(s.TotalSpent)
		ct.Percentage = exact.Truncate(2)
		s.CategoryTotals[name] = ct

		shares = append(shares, share{name: name, remainder: exact.Sub(ct.Percentage)})
		covered = covered.Add(ct.Amount)
		assigned = assigned.Add(ct.Percentage)
	}
	if !covered.Equal(s.TotalSpent) {
		return s
	}

	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].remainder.Cmp(shares[j].remainder); c != 0 {
			return c > 0
		}
		return shares[i].name < shares[j].name
	})
	left := int(hundred.Sub(assigned).Div(cent).IntPart())
	for i := 0; i < left && i < len(shares); i++ {
		ct := s.CategoryTotals[shares[i].name]
		ct.Percentage = ct.Percentage.Add(cent)
		s.CategoryTotals[shares[i].name] = ct
	}
	return s
}
