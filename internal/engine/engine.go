// Package engine adapts the two external engines the pipeline depends on:
// a recognition engine that turns one page image into text, and a
// rasterization engine that turns a PDF into a sequence of page images.
//
// The production bindings shell out to Tesseract and Poppler's pdftoppm; an
// alternative recognizer backed by Google Cloud Vision is available for
// environments without a local Tesseract install. All bindings sit behind
// the Recognizer and Rasterizer interfaces so the pipeline, and its tests,
// never depend on a real engine being installed.
//
// External engines are treated as not safe for concurrent invocation: each
// adapter instance serializes its own calls, and one pipeline run owns one
// adapter instance.
package engine

import "context"

// Recognizer extracts text from a single in-memory page image.
type Recognizer interface {
	// Recognize runs the recognition engine on one encoded page image and
	// returns the extracted UTF-8 text. Failures are scoped to this page.
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Rasterizer converts a PDF document into an ordered sequence of page images.
type Rasterizer interface {
	// Rasterize invokes the rasterization engine once for the whole document
	// and returns a lazy source of page images in document order.
	Rasterize(ctx context.Context, pdfPath string) (PageSource, error)
}

// PageSource yields rasterized page images in document order. At most one
// page image is resident in memory at a time.
type PageSource interface {
	// Next returns the next page image, or io.EOF when the document is
	// exhausted.
	Next(ctx context.Context) ([]byte, error)

	// Len returns the total number of pages.
	Len() int

	// Close releases any resources backing the source.
	Close() error
}
