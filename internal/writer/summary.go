package writer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// SummaryWriter writes a plain-text spending report.
type SummaryWriter struct{}

type reportRow struct {
	label  string
	amount decimal.Decimal
	share  decimal.Decimal
}

// Write prints the totals and, when the summary has one, the category
// breakdown sorted by amount with an explicit Uncategorized row.
func (w *SummaryWriter) Write(out io.Writer, s models.Summary) error {
	totals := [][2]string{
		{"Total Spent", formatAmount(s.TotalSpent)},
		{"Bill Payment", formatAmount(s.TotalBillPayment)},
		{"Points Earned", strconv.FormatInt(s.TotalPointsEarned, 10)},
		{"Transactions", strconv.Itoa(s.TransactionCount)},
	}

	var b strings.Builder
	labelWidth := 0
	for _, t := range totals {
		labelWidth = max(labelWidth, runewidth.StringWidth(t[0]))
	}
	for _, t := range totals {
		fmt.Fprintf(&b, "%s : %s\n", runewidth.FillRight(t[0], labelWidth), t[1])
	}

	if s.CategoryTotals != nil {
		b.WriteString("\n")
		writeBreakdown(&b, categoryRows(s))
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// categoryRows orders categories by descending amount, then by name.
func categoryRows(s models.Summary) []reportRow {
	rows := make([]reportRow, 0, len(s.CategoryTotals)+1)
	for name, ct := range s.CategoryTotals {
		rows = append(rows, reportRow{label: name, amount: ct.Amount, share: ct.Percentage})
	}
	if _, ok := s.CategoryTotals[models.Uncategorized]; !ok {
		rows = append(rows, reportRow{label: models.Uncategorized, amount: decimal.Zero, share: decimal.Zero})
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].amount.Cmp(rows[j].amount); c != 0 {
			return c > 0
		}
		return rows[i].label < rows[j].label
	})
	return rows
}

func writeBreakdown(b *strings.Builder, rows []reportRow) {
	nameWidth := runewidth.StringWidth("Category")
	amountWidth := len("Amount")
	for _, r := range rows {
		nameWidth = max(nameWidth, runewidth.StringWidth(r.label))
		amountWidth = max(amountWidth, len(formatAmount(r.amount)))
	}

	fmt.Fprintf(b, "%s  %s  %s\n",
		runewidth.FillRight("Category", nameWidth),
		runewidth.FillLeft("Amount", amountWidth),
		"Share",
	)
	for _, r := range rows {
		fmt.Fprintf(b, "%s  %s  %6s%%\n",
			runewidth.FillRight(r.label, nameWidth),
			runewidth.FillLeft(formatAmount(r.amount), amountWidth),
			r.share.StringFixed(2),
		)
	}
}
