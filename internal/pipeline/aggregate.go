package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"thaiocr/internal/document"
)

// ErrOutputWrite is returned when the aggregate text cannot be written to
// the destination path.
var ErrOutputWrite = errors.New("failed to write output file")

// boundaryMarker is the line separating consecutive pages in the aggregate
// output. N is the ordinal of the page that follows the marker, so an N-page
// document contains exactly N-1 markers and no trailing marker.
func boundaryMarker(index int) string {
	return fmt.Sprintf("----- page %d -----", index)
}

// Aggregate concatenates page texts in ordinal order with a boundary marker
// between pages. Failed pages contribute an empty body but keep their place
// in the sequence, so markers always correspond to true document pages.
func Aggregate(results []document.PageResult) *document.RunOutcome {
	var text strings.Builder
	var errs []string
	failed := 0

	for i, result := range results {
		if i > 0 {
			text.WriteString("\n")
			text.WriteString(boundaryMarker(result.Index))
			text.WriteString("\n")
		}
		text.WriteString(result.Text)
		if !result.Ok {
			failed++
			errs = append(errs, fmt.Sprintf("page %d: %s", result.Index, result.Err))
		}
	}

	return &document.RunOutcome{
		Text:        text.String(),
		PagesTotal:  len(results),
		PagesFailed: failed,
		Errors:      errs,
	}
}

// Write persists the aggregate text as UTF-8 at the destination path,
// creating parent directories as needed and overwriting an existing file.
// This is the pipeline's only disk write.
func Write(outcome *document.RunOutcome, destinationPath string) error {
	if dir := filepath.Dir(destinationPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrOutputWrite, destinationPath, err)
		}
	}

	if err := os.WriteFile(destinationPath, []byte(outcome.Text), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputWrite, destinationPath, err)
	}
	return nil
}
