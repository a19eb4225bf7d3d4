package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runPdftotext extracts text with pdftotext from poppler-utils. Pages are
// separated by form feeds in its output.
func runPdftotext(ctx context.Context, path, password string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	args := []string{"-layout"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path, "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "pdftotext", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "password") {
			return nil, fmt.Errorf("%w (pdftotext: %s)", ErrDecryption, msg)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return nil, fmt.Errorf("pdftotext failed: %s", msg)
		}
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return splitFormFeeds(stdout.String())
}

// splitFormFeeds splits pdftotext output into pages. The trailing form feed
// after the last page does not start a new page.
func splitFormFeeds(out string) ([]string, error) {
	out = strings.TrimRight(out, "\f\n")
	if strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	pages := strings.Split(out, "\f")
	for i, p := range pages {
		pages[i] = strings.TrimSpace(p)
	}
	return pages, nil
}
