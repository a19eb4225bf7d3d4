package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/cc-statement-parser/internal/category"
	"github.com/insightdelivered/cc-statement-parser/internal/collate"
	"github.com/insightdelivered/cc-statement-parser/internal/extractor"
	"github.com/insightdelivered/cc-statement-parser/internal/models"
	"github.com/insightdelivered/cc-statement-parser/internal/parser"
)

// lockedSource fails statements listed in locked with ErrDecryption and
// delays the others so later inputs tend to finish first.
type lockedSource struct {
	text   TextSource
	locked map[string]bool
	delay  map[string]time.Duration
	calls  atomic.Int32
}

func (s *lockedSource) Pages(ctx context.Context, id string) ([]string, error) {
	s.calls.Add(1)
	if d := s.delay[id]; d > 0 {
		time.Sleep(d)
	}
	if s.locked[id] {
		return nil, extractor.ErrDecryption
	}
	return s.text.Pages(ctx, id)
}

func statement(desc, amount string) []string {
	return []string{"Domestic Transactions\n15/01/2024 " + desc + " 1 " + amount}
}

func TestRunner_WrongPasswordIsIsolated(t *testing.T) {
	src := &lockedSource{
		text: TextSource{
			"jan.pdf": statement("SWIGGY", "250.00"),
			"feb.pdf": statement("ZOMATO", "300.00"),
			"mar.pdf": statement("UBER", "120.00"),
		},
		locked: map[string]bool{"feb.pdf": true},
	}

	r := NewRunner(src, parser.New(parser.Options{}, nil), 3, nil)
	res, err := r.Run(context.Background(), []string{"jan.pdf", "feb.pdf", "mar.pdf"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Documents) != 2 {
		t.Fatalf("documents: got %d, want 2", len(res.Documents))
	}
	records := res.Records()
	if len(records) != 2 || records[0].Description != "SWIGGY" || records[1].Description != "UBER" {
		t.Errorf("records: got %+v", records)
	}

	if len(res.Failures) != 1 {
		t.Fatalf("failures: got %d, want 1", len(res.Failures))
	}
	if res.Failures[0].ID != "feb.pdf" || !errors.Is(res.Failures[0], extractor.ErrDecryption) {
		t.Errorf("failure: got %v", res.Failures[0])
	}
}

func TestRunner_OrderIndependentOfCompletion(t *testing.T) {
	src := &lockedSource{
		text: TextSource{
			"b-02-01-2025.pdf": statement("SECOND", "20.00"),
			"a-01-01-2025.pdf": statement("FIRST", "10.00"),
			"c-03-01-2025.pdf": statement("THIRD", "30.00"),
		},
		delay: map[string]time.Duration{"a-01-01-2025.pdf": 20 * time.Millisecond},
	}
	key, err := collate.NewSortKey("%d-%m-%Y")
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(src, parser.New(parser.Options{}, nil), 4, nil)
	res, err := r.Run(context.Background(), []string{"b-02-01-2025.pdf", "a-01-01-2025.pdf", "c-03-01-2025.pdf"}, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a-01-01-2025.pdf", "b-02-01-2025.pdf", "c-03-01-2025.pdf"}
	for i, w := range want {
		if res.Documents[i].ID != w {
			t.Errorf("documents[%d]: got %q, want %q", i, res.Documents[i].ID, w)
		}
	}
}

func TestRunner_AllFailed(t *testing.T) {
	src := TextSource{"letter.pdf": {"Dear customer, thank you."}}

	r := NewRunner(src, parser.New(parser.Options{}, nil), 0, nil)
	res, err := r.Run(context.Background(), []string{"letter.pdf", "missing.pdf"}, nil)
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("got %v, want ErrNoDocuments", err)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("failures: got %d, want 2", len(res.Failures))
	}
	if !errors.Is(res.Failures[0], parser.ErrUnsupportedFormat) {
		t.Errorf("failures[0]: got %v, want ErrUnsupportedFormat", res.Failures[0])
	}
}

func TestRunner_Cancelled(t *testing.T) {
	src := &lockedSource{text: TextSource{"jan.pdf": statement("SWIGGY", "250.00")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(src, parser.New(parser.Options{}, nil), 1, nil)
	if _, err := r.Run(ctx, []string{"jan.pdf"}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if n := src.calls.Load(); n != 0 {
		t.Errorf("source called %d times after cancellation", n)
	}
}

func TestResult_Summarize(t *testing.T) {
	src := TextSource{
		"jan.pdf": {"Domestic Transactions\n03/01/2024 SWIGGY 2 250.00\n04/01/2024 UBER 1 150.00"},
		"feb.pdf": {"Domestic Transactions\n05/02/2024 SWIGGY 3 300.00\n06/02/2024 PAYMENT RECEIVED 700.00 Cr\nReward Points Summary\n100 50 0 0 150"},
	}

	r := NewRunner(src, parser.New(parser.Options{}, nil), 2, nil)
	res, err := r.Run(context.Background(), []string{"jan.pdf", "feb.pdf"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := category.New(category.Category{Name: "Food", Patterns: []string{"swiggy"}})
	records, s := res.Summarize(cfg)
	if len(records) != 4 {
		t.Fatalf("records: got %d, want 4", len(records))
	}
	if records[0].Category != "Food" || records[1].Category != models.Uncategorized {
		t.Errorf("categories: got %q, %q", records[0].Category, records[1].Category)
	}
	if !s.TotalSpent.Equal(decimal.NewFromInt(700)) {
		t.Errorf("TotalSpent: got %s, want 700", s.TotalSpent)
	}
	if !s.TotalBillPayment.Equal(decimal.NewFromInt(700)) {
		t.Errorf("TotalBillPayment: got %s, want 700", s.TotalBillPayment)
	}
	if s.TotalPointsEarned != 56 {
		t.Errorf("TotalPointsEarned: got %d, want 56", s.TotalPointsEarned)
	}
	if s.TransactionCount != 3 {
		t.Errorf("TransactionCount: got %d, want 3", s.TransactionCount)
	}
	if got := s.CategoryTotals["Food"].Amount; !got.Equal(decimal.NewFromInt(550)) {
		t.Errorf("Food: got %s, want 550", got)
	}
}
