package parser

import "strings"

// RawLine is one line of extracted text and where it came from.
// Page and Index are zero-based.
type RawLine struct {
	Page  int
	Index int
	Text  string
}

// SplitLines flattens page texts into lines in reading order.
func SplitLines(pages []string) []RawLine {
	var lines []RawLine
	for p, page := range pages {
		for i, text := range strings.Split(page, "\n") {
			lines = append(lines, RawLine{Page: p, Index: i, Text: text})
		}
	}
	return lines
}
