package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultDPI is the rasterization resolution used when none is configured.
// 300 DPI is the conventional floor for OCR-quality scans.
const DefaultDPI = 300

// PopplerRasterizer implements Rasterizer by invoking Poppler's pdftoppm once
// per document. Pages are rendered as PNG files into a temporary directory
// and streamed from disk one at a time, so memory stays bounded at one page
// image regardless of document length; the full rasterized document does
// occupy disk space until the source is closed.
type PopplerRasterizer struct {
	bin string
	dpi int
}

// NewPopplerRasterizer creates a rasterizer bound to the given pdftoppm
// executable.
func NewPopplerRasterizer(bin string, dpi int) *PopplerRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &PopplerRasterizer{bin: bin, dpi: dpi}
}

// Rasterize converts the whole PDF into page images and returns a PageSource
// over them in document order. The caller must Close the source.
func (p *PopplerRasterizer) Rasterize(ctx context.Context, pdfPath string) (PageSource, error) {
	const op = "Rasterize"

	dir, err := os.MkdirTemp("", "thaiocr-pages-")
	if err != nil {
		return nil, WrapEngineError(op, ErrRasterizationFailed, fmt.Sprintf("create temp dir: %v", err))
	}

	cmd := exec.CommandContext(ctx, p.bin,
		"-r", strconv.Itoa(p.dpi),
		"-png",
		pdfPath,
		filepath.Join(dir, "page"),
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.RemoveAll(dir)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, WrapEngineError(op, ErrRasterizationFailed,
			fmt.Sprintf("pdftoppm: %v: %s", err, firstLine(stderr.Bytes())))
	}

	files, err := pageFiles(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, WrapEngineError(op, ErrRasterizationFailed, err.Error())
	}
	if len(files) == 0 {
		os.RemoveAll(dir)
		return nil, WrapEngineError(op, ErrRasterizationFailed, "pdftoppm produced no pages")
	}

	return &filePageSource{dir: dir, files: files}, nil
}

// pageFiles lists the rendered page images in document order. pdftoppm
// zero-pads page numbers to a uniform width, so lexicographic order is
// document order.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page dir: %v", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".png") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// filePageSource streams page images off disk, deleting each file once read.
type filePageSource struct {
	dir   string
	files []string
	next  int
}

func (s *filePageSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.files) {
		return nil, io.EOF
	}

	path := s.files[s.next]
	s.next++

	image, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapEngineError("Next", ErrRasterizationFailed,
			fmt.Sprintf("read page image %s: %v", filepath.Base(path), err))
	}
	os.Remove(path)
	return image, nil
}

func (s *filePageSource) Len() int {
	return len(s.files)
}

func (s *filePageSource) Close() error {
	return os.RemoveAll(s.dir)
}
