// Package pipeline drives one document end-to-end: input validation,
// rasterization for PDFs, page-by-page recognition with progress reporting,
// and aggregation of the per-page results into a single text output.
//
// Page processing is sequential and ordered by ordinal. A recognition
// failure on one page is recorded in that page's result and the run
// continues; only setup errors (bad input, unresolved engines, failed
// rasterization) abort a run. Cancellation is polled at page boundaries and
// yields a partial outcome marked cancelled, which is not a failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"thaiocr/internal/document"
	"thaiocr/internal/engine"
	"thaiocr/internal/logger"
)

// ProgressFunc is called after each page with the page ordinal just finished
// and the total page count.
type ProgressFunc func(page, total int)

// Processor runs the page pipeline for one document at a time. Each run owns
// its own engine adapter instances; a Processor must not be shared across
// concurrent runs.
type Processor struct {
	recognizer engine.Recognizer
	rasterizer engine.Rasterizer

	// Progress is invoked after every page when non-nil.
	Progress ProgressFunc

	// Retry is the number of bounded re-attempts per page after a
	// recognition failure. Default 0: fail the page on first error.
	Retry int

	log zerolog.Logger
}

// New creates a Processor over the given engine bindings. The rasterizer may
// be nil when only single-image inputs will be processed.
func New(recognizer engine.Recognizer, rasterizer engine.Rasterizer) *Processor {
	return &Processor{
		recognizer: recognizer,
		rasterizer: rasterizer,
		log:        logger.WithComponent("pipeline"),
	}
}

// Run processes one input document and returns its aggregated outcome.
//
// Fatal errors (unsupported format, unreadable input, failed rasterization)
// return a nil outcome. Per-page recognition failures never fail the run;
// they are recorded in the outcome's failed-page count and error list. If
// ctx is cancelled the partial outcome is returned with Cancelled set and a
// nil error.
func (p *Processor) Run(ctx context.Context, inputPath string) (*document.RunOutcome, error) {
	start := time.Now()

	src, err := document.DetectSource(inputPath)
	if err != nil {
		return nil, err
	}

	p.log.Info().
		Str("input", src.Path).
		Str("kind", src.Kind.String()).
		Msg("Processing document")

	var results []document.PageResult
	var cancelled bool

	switch src.Kind {
	case document.KindPDF:
		results, cancelled, err = p.runPDF(ctx, src)
	default:
		results, cancelled, err = p.runImage(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	outcome := Aggregate(results)
	outcome.Cancelled = cancelled
	outcome.ProcessedAt = time.Now()
	outcome.Duration = time.Since(start)

	p.log.Info().
		Int("pages_total", outcome.PagesTotal).
		Int("pages_failed", outcome.PagesFailed).
		Bool("cancelled", outcome.Cancelled).
		Dur("duration", outcome.Duration).
		Msg("Document processed")

	return outcome, nil
}

// runPDF rasterizes the document once and recognizes each page in order.
func (p *Processor) runPDF(ctx context.Context, src document.Source) ([]document.PageResult, bool, error) {
	if p.rasterizer == nil {
		return nil, false, fmt.Errorf("%w: rasterization engine (pdftoppm)", engine.ErrEngineNotFound)
	}

	source, err := p.rasterizer.Rasterize(ctx, src.Path)
	if err != nil {
		if isContextErr(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	defer source.Close()

	total := source.Len()
	p.log.Info().Int("pages", total).Msg("Rasterized PDF")

	var results []document.PageResult
	for index := 1; ; index++ {
		// Cancellation takes effect at page boundaries only.
		if ctx.Err() != nil {
			return results, true, nil
		}

		image, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return results, false, nil
		}
		if err != nil {
			if isContextErr(err) {
				return results, true, nil
			}
			return nil, false, err
		}

		result, pageCancelled := p.recognizePage(ctx, document.Page{Index: index, Image: image}, total)
		if pageCancelled {
			return results, true, nil
		}
		results = append(results, result)
		p.reportProgress(index, total)
	}
}

// runImage treats a single raster image as a one-page document.
func (p *Processor) runImage(ctx context.Context, src document.Source) ([]document.PageResult, bool, error) {
	image, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", document.ErrUnreadableInput, src.Path, err)
	}

	if ctx.Err() != nil {
		return nil, true, nil
	}

	result, cancelled := p.recognizePage(ctx, document.Page{Index: 1, Image: image}, 1)
	if cancelled {
		return nil, true, nil
	}
	p.reportProgress(1, 1)
	return []document.PageResult{result}, false, nil
}

// recognizePage runs recognition for one page, with bounded retries. A
// failure is recorded in the result, not propagated. The second return value
// reports that the context was cancelled mid-recognition; the interrupted
// page is not recorded.
func (p *Processor) recognizePage(ctx context.Context, page document.Page, total int) (document.PageResult, bool) {
	var lastErr error
	for attempt := 0; attempt <= p.Retry; attempt++ {
		text, err := p.recognizer.Recognize(ctx, page.Image)
		if err == nil {
			return document.PageResult{Index: page.Index, Text: text, Ok: true}, false
		}
		if isContextErr(err) || ctx.Err() != nil {
			return document.PageResult{}, true
		}
		lastErr = err
		p.log.Warn().
			Err(err).
			Int("page", page.Index).
			Int("total", total).
			Int("attempt", attempt+1).
			Msg("Page recognition failed")
	}

	return document.PageResult{Index: page.Index, Ok: false, Err: lastErr.Error()}, false
}

func (p *Processor) reportProgress(page, total int) {
	p.log.Debug().Int("page", page).Int("total", total).Msg("Page done")
	if p.Progress != nil {
		p.Progress(page, total)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
