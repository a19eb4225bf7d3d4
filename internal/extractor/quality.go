package extractor

import (
	"strings"
	"unicode"
)

const (
	minTextLen = 50
	minQuality = 0.6
)

// statementWords appear on every card statement. Text without any of them
// is taken to be undecoded font garbage.
var statementWords = []string{
	"statement", "card", "credit", "transaction", "amount", "date",
	"payment", "reward", "points", "total", "due", "limit",
}

// isReadableText reports whether decoded pages look like real statement
// text: long enough, mostly plain characters, and with a statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= minTextLen {
		return false
	}
	if textQuality(pages) <= minQuality {
		return false
	}
	return containsStatementWords(pages)
}

// textQuality is the share of runes that are ASCII letters, digits,
// whitespace, punctuation, or currency signs used on statements.
func textQuality(pages []string) float64 {
	var total, readable int
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsPunct(r)):
				readable++
			case unicode.IsSpace(r):
				readable++
			case strings.ContainsRune("₹$€£+=<>|", r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func containsStatementWords(pages []string) bool {
	text := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
