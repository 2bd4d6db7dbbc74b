package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDetectSourceImageKinds(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		want Kind
	}{
		{"scan.png", KindImage},
		{"scan.jpg", KindImage},
		{"scan.JPEG", KindImage},
		{"scan.tif", KindImage},
		{"scan.tiff", KindImage},
		{"scan.bmp", KindImage},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		writeFile(t, path, []byte("not really an image"))

		src, err := DetectSource(path)
		if err != nil {
			t.Errorf("DetectSource(%s) error: %v", tt.name, err)
			continue
		}
		if src.Kind != tt.want {
			t.Errorf("DetectSource(%s).Kind = %v, want %v", tt.name, src.Kind, tt.want)
		}
		if src.Path != path {
			t.Errorf("DetectSource(%s).Path = %q, want %q", tt.name, src.Path, path)
		}
	}
}

func TestDetectSourcePDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	writeFile(t, path, []byte("%PDF-1.7 rest of the document"))

	src, err := DetectSource(path)
	if err != nil {
		t.Fatalf("DetectSource: %v", err)
	}
	if src.Kind != KindPDF {
		t.Errorf("Kind = %v, want KindPDF", src.Kind)
	}
}

func TestDetectSourcePDFBadHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	writeFile(t, path, []byte("<html>not a pdf</html>"))

	_, err := DetectSource(path)
	if !errors.Is(err, ErrInvalidPDF) {
		t.Errorf("error = %v, want ErrInvalidPDF", err)
	}
}

func TestDetectSourceUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.docx")
	writeFile(t, path, []byte("data"))

	_, err := DetectSource(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDetectSourceMissingFile(t *testing.T) {
	_, err := DetectSource(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, ErrUnreadableInput) {
		t.Errorf("error = %v, want ErrUnreadableInput", err)
	}
}

func TestDetectSourceEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.png")
	writeFile(t, path, nil)

	_, err := DetectSource(path)
	if !errors.Is(err, ErrUnreadableInput) {
		t.Errorf("error = %v, want ErrUnreadableInput", err)
	}
}
