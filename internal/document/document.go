// Package document describes the inputs and outputs of one OCR run: the
// source file and its detected kind, the per-page images and recognition
// results, and the aggregate outcome returned to the caller.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Common input validation errors
var (
	// ErrUnsupportedFormat is returned when the input file extension is not
	// in the supported set. This is a fatal setup error, raised before any
	// engine is invoked.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrInvalidPDF is returned when a .pdf input does not start with the
	// PDF magic bytes.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrUnreadableInput is returned when the input path does not exist,
	// is not a regular file, or cannot be opened.
	ErrUnreadableInput = errors.New("input file is not readable")
)

// Kind classifies an input document.
type Kind int

const (
	// KindPDF is a multi-page PDF that must be rasterized before recognition.
	KindPDF Kind = iota

	// KindImage is a single raster image processed as a one-page document.
	KindImage
)

// String returns a short name for the kind.
func (k Kind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "image"
}

// supportedExtensions maps lowercase file extensions to document kinds.
var supportedExtensions = map[string]Kind{
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".bmp":  KindImage,
}

// Source is an input reference with its detected kind. It is read-only and
// lives for one pipeline invocation.
type Source struct {
	Path string
	Kind Kind
}

// DetectSource classifies the input by extension, verifies the path points at
// a readable regular file, and sniffs the PDF header for .pdf inputs.
// It returns ErrUnsupportedFormat, ErrUnreadableInput, or ErrInvalidPDF on
// failure; all are fatal before any page work starts.
func DetectSource(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := supportedExtensions[ext]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", ErrUnreadableInput, path, err)
	}
	if !info.Mode().IsRegular() {
		return Source{}, fmt.Errorf("%w: %s: not a regular file", ErrUnreadableInput, path)
	}
	if info.Size() == 0 {
		return Source{}, fmt.Errorf("%w: %s: file is empty", ErrUnreadableInput, path)
	}

	if kind == KindPDF {
		if err := sniffPDFHeader(path); err != nil {
			return Source{}, err
		}
	}

	return Source{Path: path, Kind: kind}, nil
}

// sniffPDFHeader checks the file starts with the %PDF magic.
func sniffPDFHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableInput, path, err)
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := f.Read(header); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableInput, path, err)
	}
	if string(header) != "%PDF" {
		return fmt.Errorf("%w: %s: missing PDF header", ErrInvalidPDF, path)
	}
	return nil
}

// SupportedExtensions returns the accepted input extensions, for help text.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	return exts
}
