package pipeline_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"thaiocr/internal/engine"
	"thaiocr/internal/pipeline"
)

// Example demonstrates processing a scanned PDF with the local engines.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Locate Tesseract and Poppler on this host; fails before any page work
	// if either engine is missing.
	paths, err := engine.ResolveEngines("", "", engine.SystemProbe())
	if err != nil {
		log.Fatalf("Failed to resolve engines: %v", err)
	}

	recognizer, err := engine.NewTesseractRecognizer(ctx, paths.Tesseract, "tha", engine.DefaultPSM)
	if err != nil {
		log.Fatalf("Failed to create recognizer: %v", err)
	}
	rasterizer := engine.NewPopplerRasterizer(paths.PDFToPPM, engine.DefaultDPI)

	processor := pipeline.New(recognizer, rasterizer)
	processor.Progress = func(page, total int) {
		fmt.Printf("page %d/%d done\n", page, total)
	}

	outcome, err := processor.Run(ctx, "scan.pdf")
	if err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}

	if err := pipeline.Write(outcome, "scan.txt"); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	fmt.Printf("Processed %d page(s), %d failed\n", outcome.PagesTotal, outcome.PagesFailed)
}
