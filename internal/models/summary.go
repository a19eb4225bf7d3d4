package models

import "github.com/shopspring/decimal"

// CategoryTotal is the spend attributed to one category.
type CategoryTotal struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Summary aggregates a record sequence. CategoryTotals is nil when
// categorisation was disabled.
type Summary struct {
	TotalSpent        decimal.Decimal          `json:"totalSpent"`
	TotalBillPayment  decimal.Decimal          `json:"totalBillPayment"`
	TotalPointsEarned int64                    `json:"totalPointsEarned"`
	TransactionCount  int                      `json:"transactionCount"`
	CategoryTotals    map[string]CategoryTotal `json:"categoryTotals,omitempty"`
}
