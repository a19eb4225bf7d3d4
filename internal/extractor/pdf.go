// Package extractor turns statement PDFs into page text in reading order.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var (
	// ErrDecryption means the password is wrong or missing.
	ErrDecryption = errors.New("cannot decrypt statement: wrong or missing password")

	// ErrNoText means no readable text layer could be found.
	ErrNoText = errors.New("no readable text in statement")
)

// Extractor reads page text with the pdf library and falls back to
// pdftotext when the library cannot decrypt or decode a file.
type Extractor struct {
	logger    *zap.Logger
	pdftotext func(ctx context.Context, path, password string) ([]string, error)
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger, pdftotext: runPdftotext}
}

// ExtractFile returns the text of each page of the PDF at path.
func (e *Extractor) ExtractFile(ctx context.Context, path, password string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pages, libErr := readWithLibrary(f, info.Size(), password)
	if libErr == nil {
		return pages, nil
	}

	log := e.logger.With(zap.String("file", path))
	log.Debug("pdf library could not read statement, trying pdftotext", zap.Error(libErr))

	pages, toolErr := e.pdftotext(ctx, path, password)
	if toolErr == nil && isReadableText(pages) {
		return pages, nil
	}
	if toolErr != nil {
		log.Debug("pdftotext fallback failed", zap.Error(toolErr))
	}

	switch {
	case errors.Is(libErr, ErrDecryption), errors.Is(toolErr, ErrDecryption):
		return nil, ErrDecryption
	case errors.Is(libErr, ErrNoText):
		return nil, ErrNoText
	}
	return nil, libErr
}

// ExtractBytes is ExtractFile for an in-memory PDF, such as an upload.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte, password string) ([]string, error) {
	pages, err := readWithLibrary(bytes.NewReader(data), int64(len(data)), password)
	if err == nil {
		return pages, nil
	}

	// pdftotext needs a file on disk.
	tmp, tmpErr := os.CreateTemp("", "statement-*.pdf")
	if tmpErr != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, werr := tmp.Write(data); werr != nil {
		tmp.Close()
		return nil, err
	}
	if cerr := tmp.Close(); cerr != nil {
		return nil, err
	}
	return e.ExtractFile(ctx, tmp.Name(), password)
}

// readWithLibrary opens the document with the password and tries the
// library's extraction methods in order of layout fidelity.
func readWithLibrary(f io.ReaderAt, size int64, password string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	r, err := openReader(f, size, password)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	for _, method := range []func(*pdf.Reader, int) []string{
		textByRow,
		textByContent,
		textByFonts,
	} {
		pages = method(r, numPages)
		if isReadableText(pages) {
			return pages, nil
		}
	}
	return nil, ErrNoText
}

// openReader offers the password once. The library tries the empty
// password first, so unencrypted files open without one.
func openReader(f io.ReaderAt, size int64, password string) (*pdf.Reader, error) {
	offered := false
	r, err := pdf.NewReaderEncrypted(f, size, func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	})
	if err == nil {
		return r, nil
	}
	if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(strings.ToLower(err.Error()), "encrypt") {
		return nil, fmt.Errorf("%w (%v)", ErrDecryption, err)
	}
	return nil, err
}

// eachPage returns text(page) for pages 1..numPages. A null page yields ""
// so every page keeps its position.
func eachPage(numPages int, pageAt func(int) pdf.Page, text func(pdf.Page) string) []string {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := pageAt(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text(page))
	}
	return pages
}

// textByRow joins the words of each row the library reports.
func textByRow(r *pdf.Reader, numPages int) []string {
	return eachPage(numPages, r.Page, func(page pdf.Page) string {
		rows, err := page.GetTextByRow()
		if err != nil {
			return ""
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	})
}

// columnGap is the horizontal distance, in points, treated as a column break.
const columnGap = 15

// textByContent rebuilds rows from positioned text: pieces are grouped by
// rounded Y, rows run top to bottom and pieces left to right.
func textByContent(r *pdf.Reader, numPages int) []string {
	type piece struct {
		x float64
		s string
	}

	return eachPage(numPages, r.Page, func(page pdf.Page) string {
		rows := make(map[int][]piece)
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		lines := make([]string, 0, len(ys))
		for _, y := range ys {
			row := rows[y]
			sort.Slice(row, func(a, b int) bool { return row[a].x < row[b].x })

			var b strings.Builder
			for j, p := range row {
				if j > 0 && p.x-row[j-1].x > columnGap {
					b.WriteString("  ")
				}
				b.WriteString(p.s)
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	})
}

// textByFonts decodes each page with its own font map.
func textByFonts(r *pdf.Reader, numPages int) []string {
	return eachPage(numPages, r.Page, func(page pdf.Page) string {
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(text)
	})
}
