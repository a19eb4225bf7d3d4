package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SectionKind identifies the statement section a row was read from.
type SectionKind int

const (
	SectionUnknown SectionKind = iota
	SectionDomestic
	SectionInternational
	SectionRewardPoints
	SectionBillPayment
)

func (k SectionKind) String() string {
	switch k {
	case SectionDomestic:
		return "domestic"
	case SectionInternational:
		return "international"
	case SectionRewardPoints:
		return "reward-points"
	case SectionBillPayment:
		return "bill-payment"
	default:
		return "unknown"
	}
}

// MarshalText lets SectionKind render as its name in JSON.
func (k SectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SectionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "domestic":
		*k = SectionDomestic
	case "international":
		*k = SectionInternational
	case "reward-points":
		*k = SectionRewardPoints
	case "bill-payment":
		*k = SectionBillPayment
	case "unknown", "":
		*k = SectionUnknown
	default:
		return fmt.Errorf("unknown section %q", text)
	}
	return nil
}

// TransactionRecord is a single statement row.
//
// Amount is signed: positive is charged to the cardholder, negative is
// credited (refund or payment).
type TransactionRecord struct {
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	RewardPoints   int64           `json:"rewardPoints"`
	Amount         decimal.Decimal `json:"amount"`
	Section        SectionKind     `json:"section"`
	SourceDocument string          `json:"sourceDocument"`
	Cardholder     string          `json:"cardholder,omitempty"`

	// International rows only.
	ForeignCurrency string          `json:"foreignCurrency,omitempty"`
	ForeignAmount   decimal.Decimal `json:"foreignAmount"`
	ConversionRate  decimal.Decimal `json:"conversionRate"`
}

// IsCredit reports whether the row was marked as a credit.
func (r TransactionRecord) IsCredit() bool {
	return r.Amount.IsNegative()
}

// CategorizedRecord pairs a record with its assigned category.
// Category is empty when categorisation is disabled.
type CategorizedRecord struct {
	TransactionRecord
	Category string `json:"category,omitempty"`
}

// RewardSummary holds the scalar totals of a reward-points summary block.
type RewardSummary struct {
	Opening  int64 `json:"opening"`
	Earned   int64 `json:"earned"`
	Redeemed int64 `json:"redeemed"`
	Expired  int64 `json:"expired"`
	Closing  int64 `json:"closing"`
	Found    bool  `json:"found"`
}

// Document is the parse result of one statement file.
type Document struct {
	ID             string              `json:"id"`
	Records        []TransactionRecord `json:"records"`
	Rewards        RewardSummary       `json:"rewards"`
	PeriodStart    time.Time           `json:"periodStart"`
	PeriodEnd      time.Time           `json:"periodEnd"`
	PointsReversed int64               `json:"pointsReversed,omitempty"`
	Skipped        []SkippedRow        `json:"skipped,omitempty"`
}

// SkippedRow records a transaction row that was dropped while parsing.
type SkippedRow struct {
	Page   int    `json:"page"`
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Uncategorized is the reserved category for records no pattern matched.
const Uncategorized = "Uncategorized"
