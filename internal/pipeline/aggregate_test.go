package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"thaiocr/internal/document"
)

func okPage(index int, text string) document.PageResult {
	return document.PageResult{Index: index, Text: text, Ok: true}
}

func failedPage(index int, errText string) document.PageResult {
	return document.PageResult{Index: index, Ok: false, Err: errText}
}

func TestAggregateMarkerPlacement(t *testing.T) {
	outcome := Aggregate([]document.PageResult{
		okPage(1, "one"),
		okPage(2, "two"),
		okPage(3, "three"),
	})

	want := "one\n----- page 2 -----\ntwo\n----- page 3 -----\nthree"
	if outcome.Text != want {
		t.Errorf("Text = %q, want %q", outcome.Text, want)
	}
	if strings.HasSuffix(outcome.Text, "-----") {
		t.Error("output has a trailing marker after the last page")
	}
	if outcome.PagesTotal != 3 || outcome.PagesFailed != 0 {
		t.Errorf("totals = %d/%d, want 3/0", outcome.PagesTotal, outcome.PagesFailed)
	}
}

func TestAggregateSinglePageHasNoMarker(t *testing.T) {
	outcome := Aggregate([]document.PageResult{okPage(1, "only")})
	if outcome.Text != "only" {
		t.Errorf("Text = %q, want %q", outcome.Text, "only")
	}
}

func TestAggregateFailedPageKeepsOrdinal(t *testing.T) {
	outcome := Aggregate([]document.PageResult{
		okPage(1, "first"),
		failedPage(2, "engine crashed"),
		okPage(3, "third"),
	})

	if got := strings.Count(outcome.Text, "----- page"); got != 2 {
		t.Errorf("marker count = %d, want 2", got)
	}
	if !strings.Contains(outcome.Text, "----- page 2 -----\n\n----- page 3 -----") {
		t.Errorf("failed page 2 does not keep its marker with empty body: %q", outcome.Text)
	}
	if outcome.PagesFailed != 1 {
		t.Errorf("PagesFailed = %d, want 1", outcome.PagesFailed)
	}
	if len(outcome.Errors) != 1 || outcome.Errors[0] != "page 2: engine crashed" {
		t.Errorf("Errors = %v", outcome.Errors)
	}
}

func TestAggregateEmpty(t *testing.T) {
	outcome := Aggregate(nil)
	if outcome.Text != "" || outcome.PagesTotal != 0 || outcome.PagesFailed != 0 {
		t.Errorf("empty aggregate = %+v", outcome)
	}
}

func TestWriteUTF8(t *testing.T) {
	outcome := Aggregate([]document.PageResult{
		okPage(1, "หน้า1"),
		okPage(2, "หน้า2"),
	})

	path := filepath.Join(t.TempDir(), "nested", "out", "result.txt")
	if err := Write(outcome, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !utf8.Valid(data) {
		t.Error("output is not valid UTF-8")
	}
	if string(data) != outcome.Text {
		t.Errorf("file content = %q, want %q", data, outcome.Text)
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	outcome := Aggregate([]document.PageResult{okPage(1, "fresh")})
	if err := Write(outcome, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "fresh" {
		t.Errorf("content = %q, want overwrite", data)
	}
}

func TestWriteErrorNamesPath(t *testing.T) {
	// Destination parent is a file, so the write must fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	dest := filepath.Join(blocker, "out.txt")

	err := Write(Aggregate(nil), dest)
	if !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("error = %v, want ErrOutputWrite", err)
	}
	if !strings.Contains(err.Error(), dest) {
		t.Errorf("error %q does not name the destination path", err)
	}
}
