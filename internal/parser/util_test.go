package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"25.99", "25.99", false},
		{"1,234.56", "1234.56", false},
		{"₹1,234.56", "1234.56", false},
		{"Rs.99.00", "99", false},
		{"1,23,456.78", "123456.78", false},
		{" 25.99 ", "25.99", false},
		{"", "", true},
		{"12.3.4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		date, clock string
		expected    time.Time
		wantErr     bool
	}{
		{"12/01/2024", "", time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), false},
		{"12/01/2024", "23:11:05", time.Date(2024, 1, 12, 23, 11, 5, 0, time.UTC), false},
		{"12/01/2024", "23:11", time.Date(2024, 1, 12, 23, 11, 0, 0, time.UTC), false},
		{"31/02/2024", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.date+" "+tt.clock, func(t *testing.T) {
			got, err := parseStatementDate(tt.date, tt.clock)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"12", 12, true},
		{"1,450", 1450, true},
		{"12.5", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseInteger(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseInteger(%q): got (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeLine(t *testing.T) {
	got := normalizeLine("\u200B\u00A0 AMAZON PAY\tINDIA\u00A0")
	if got != "AMAZON PAY INDIA" {
		t.Errorf("got %q, want %q", got, "AMAZON PAY INDIA")
	}
}
