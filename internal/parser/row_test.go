package parser

import (
	"errors"
	"testing"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

func TestParseRow_Domestic(t *testing.T) {
	tests := []struct {
		tail     string
		desc     string
		amount   string
		credit   bool
		points   int64
		reversal bool
	}{
		{"AMAZON PAY INDIA 12 1,234.50", "AMAZON PAY INDIA", "1,234.50", false, 12, false},
		{"AMAZON PAY INDIA 1,234.50", "AMAZON PAY INDIA", "1,234.50", false, 0, false},
		{"REFUND AMAZON 500.00 Cr", "REFUND AMAZON", "500.00", true, 0, false},
		{"REFUND AMAZON - 5 500.00 Cr", "REFUND AMAZON", "500.00", true, 5, true},
		{"REFUND AMAZON -5 500.00 CR", "REFUND AMAZON", "500.00", true, 5, true},
		{"CASHBACK 75.00Cr", "CASHBACK", "75.00", true, 0, false},
		{"MYSTERY MERCHANT", "MYSTERY MERCHANT", "", false, 0, false},
		{"ROOM 101 HOTEL", "ROOM 101 HOTEL", "", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tail, func(t *testing.T) {
			row, err := parseRow(models.SectionDomestic, tt.tail)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if row.description != tt.desc {
				t.Errorf("description: got %q, want %q", row.description, tt.desc)
			}
			if row.amountText != tt.amount {
				t.Errorf("amount: got %q, want %q", row.amountText, tt.amount)
			}
			if row.credit != tt.credit {
				t.Errorf("credit: got %v, want %v", row.credit, tt.credit)
			}
			if row.points != tt.points || row.reversal != tt.reversal {
				t.Errorf("points: got (%d, %v), want (%d, %v)", row.points, row.reversal, tt.points, tt.reversal)
			}
		})
	}
}

func TestParseRow_International(t *testing.T) {
	tests := []struct {
		tail     string
		desc     string
		currency string
		foreign  string
		rate     string
		points   int64
	}{
		{"NETFLIX.COM LOS GATOS USD 15.49 1,298.50", "NETFLIX.COM LOS GATOS", "USD", "15.49", "0", 0},
		{"NETFLIX.COM LOS GATOS 15.49 USD 1,298.50", "NETFLIX.COM LOS GATOS", "USD", "15.49", "0", 0},
		{"AWS SEATTLE 15.49 USD 83.82 20 1,298.50", "AWS SEATTLE", "USD", "15.49", "83.82", 20},
		{"AWS SEATTLE USD 15.49 @83.82 1,298.50", "AWS SEATTLE", "USD", "15.49", "83.82", 0},
		{"AWS SEATTLE USD 15.49 83.82 1,298.50", "AWS SEATTLE", "USD", "15.49", "83.82", 0},
	}

	for _, tt := range tests {
		t.Run(tt.tail, func(t *testing.T) {
			row, err := parseRow(models.SectionInternational, tt.tail)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if row.description != tt.desc {
				t.Errorf("description: got %q, want %q", row.description, tt.desc)
			}
			if row.foreignCurrency != tt.currency {
				t.Errorf("currency: got %q, want %q", row.foreignCurrency, tt.currency)
			}
			if row.foreignAmount.String() != tt.foreign {
				t.Errorf("foreign amount: got %s, want %s", row.foreignAmount, tt.foreign)
			}
			if row.conversionRate.String() != tt.rate {
				t.Errorf("rate: got %s, want %s", row.conversionRate, tt.rate)
			}
			if row.points != tt.points {
				t.Errorf("points: got %d, want %d", row.points, tt.points)
			}
			if row.amountText != "1,298.50" {
				t.Errorf("amount: got %q", row.amountText)
			}
		})
	}
}

func TestParseRow_InternationalWithoutForeignAmount(t *testing.T) {
	_, err := parseRow(models.SectionInternational, "SOME MERCHANT 1,000.00")
	if !errors.Is(err, ErrRowGrammar) {
		t.Errorf("got %v, want ErrRowGrammar", err)
	}
}
