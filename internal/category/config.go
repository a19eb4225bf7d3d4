// Package category assigns spending categories to transaction descriptions
// using an ordered list of merchant patterns.
package category

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is one named group of merchant patterns.
type Category struct {
	Name     string
	Patterns []string

	// upper holds the patterns normalised for matching.
	upper []string
}

// Config is the ordered category list. Earlier categories win. A Config is
// read-only after loading.
type Config struct {
	Categories []Category
}

// ConfigError reports a category file that could not be loaded.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("category config %q: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// normalize upper-cases text for case-insensitive substring matching.
// Casers keep state, so each call gets its own.
func normalize(s string) string {
	return cases.Upper(language.Und).String(s)
}

// New builds a Config from category names and patterns in order.
func New(categories ...Category) *Config {
	cfg := &Config{}
	for _, c := range categories {
		cfg.add(c.Name, c.Patterns)
	}
	return cfg
}

func (c *Config) add(name string, patterns []string) {
	cat := Category{Name: name, Patterns: patterns}
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cat.upper = append(cat.upper, normalize(p))
		}
	}
	c.Categories = append(c.Categories, cat)
}

// LoadFile reads a JSON object of category name to pattern array. Key order
// in the file is the match order.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes the JSON category object, keeping key order.
func Parse(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object of category name to pattern list")
	}

	cfg := &Config{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var patterns []string
		if err := dec.Decode(&patterns); err != nil {
			return nil, fmt.Errorf("category %q: patterns must be an array of strings: %w", name, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("category %q listed twice", name)
		}
		seen[name] = true
		cfg.add(name, patterns)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after category object")
	}
	return cfg, nil
}
