package extractor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

const sampleText = `HDFC Bank Credit Card Statement
Domestic Transactions
12/01/2024 AMAZON PAY INDIA 12 1,234.50
Total Amount Due 1,234.50`

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"statement text", []string{sampleText}, true},
		{"too short", []string{"Statement"}, false},
		{"garbage glyphs", []string{strings.Repeat("æðþßŒ", 30) + " statement"}, false},
		{"no statement words", []string{strings.Repeat("lorem ipsum dolor sit ", 5)}, false},
		{"rupee amounts", []string{"Card statement ₹ 1,000.00 ₹ 2,500.00 ₹ 300.00 payment due 12/02/2024"}, true},
	}
	for _, tt := range tests {
		if got := isReadableText(tt.pages); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSplitFormFeeds(t *testing.T) {
	pages, err := splitFormFeeds("page one\n\fpage two\n\f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 || pages[0] != "page one" || pages[1] != "page two" {
		t.Errorf("got %q", pages)
	}

	if _, err := splitFormFeeds("\f\n"); err == nil {
		t.Error("expected error for empty output")
	}
}

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFile_MissingFile(t *testing.T) {
	e := New(nil)
	_, err := e.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want fs.ErrNotExist", err)
	}
}

func TestExtractFile_FallbackDecryptionError(t *testing.T) {
	e := New(nil)
	e.pdftotext = func(ctx context.Context, path, password string) ([]string, error) {
		return nil, ErrDecryption
	}

	_, err := e.ExtractFile(context.Background(), writeFile(t, "not a pdf"), "wrong")
	if !errors.Is(err, ErrDecryption) {
		t.Errorf("got %v, want ErrDecryption", err)
	}
}

func TestExtractFile_FallbackText(t *testing.T) {
	e := New(nil)
	var gotPassword string
	e.pdftotext = func(ctx context.Context, path, password string) ([]string, error) {
		gotPassword = password
		return []string{sampleText, "Reward Points Summary"}, nil
	}

	pages, err := e.ExtractFile(context.Background(), writeFile(t, "not a pdf"), "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("pages: got %d, want 2", len(pages))
	}
	if gotPassword != "secret" {
		t.Errorf("password: got %q, want secret", gotPassword)
	}
}

func TestExtractBytes_UsesFallback(t *testing.T) {
	e := New(nil)
	e.pdftotext = func(ctx context.Context, path, password string) ([]string, error) {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("fallback got unreadable path: %v", err)
		}
		return []string{sampleText}, nil
	}

	pages, err := e.ExtractBytes(context.Background(), []byte("not a pdf"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("pages: got %d, want 1", len(pages))
	}
}

func TestEachPage_NullPagesKeepPosition(t *testing.T) {
	var asked []int
	pageAt := func(i int) pdf.Page {
		asked = append(asked, i)
		return pdf.Page{}
	}
	pages := eachPage(3, pageAt, func(pdf.Page) string {
		t.Error("text called for a null page")
		return "x"
	})

	if len(pages) != 3 {
		t.Fatalf("pages: got %d, want 3", len(pages))
	}
	for i, p := range pages {
		if p != "" {
			t.Errorf("pages[%d]: got %q, want empty", i, p)
		}
	}
	if len(asked) != 3 || asked[0] != 1 || asked[2] != 3 {
		t.Errorf("pages asked: got %v, want [1 2 3]", asked)
	}
}
