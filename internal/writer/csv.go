package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// DateLayout is how record dates are written.
const DateLayout = "2006-01-02 15:04:05"

// ErrNoRecords is returned by WriteToFile when there is nothing to write.
var ErrNoRecords = errors.New("no transaction records to write")

var csvHeader = []string{"Date", "Description", "Reward Points", "Amount"}

// CSVWriter writes transaction records as CSV.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes records to path. The file is not created when there
// are no records.
func (w *CSVWriter) WriteToFile(path string, records []models.TransactionRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	if err := w.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes records in CSV format to out.
func (w *CSVWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	cw := csv.NewWriter(out)

	if w.IncludeHeader {
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, r := range records {
		row := []string{
			r.Date.Format(DateLayout),
			r.Description,
			strconv.FormatInt(r.RewardPoints, 10),
			formatAmount(r.Amount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
