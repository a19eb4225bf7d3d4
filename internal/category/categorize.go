package category

import (
	"strings"

	"github.com/insightdelivered/cc-statement-parser/internal/models"
)

// Categorize returns the first category with a pattern contained in the
// description, or models.Uncategorized. A nil config returns "".
func Categorize(description string, cfg *Config) string {
	if cfg == nil {
		return ""
	}
	desc := normalize(description)
	for _, c := range cfg.Categories {
		for _, p := range c.upper {
			if strings.Contains(desc, p) {
				return c.Name
			}
		}
	}
	return models.Uncategorized
}

// Apply categorises every record. With a nil config the category is left
// empty, which disables the per-category breakdown.
func Apply(records []models.TransactionRecord, cfg *Config) []models.CategorizedRecord {
	out := make([]models.CategorizedRecord, len(records))
	for i, r := range records {
		out[i] = models.CategorizedRecord{
			TransactionRecord: r,
			Category:          Categorize(r.Description, cfg),
		}
	}
	return out
}
