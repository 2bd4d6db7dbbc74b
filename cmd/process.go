package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"thaiocr/internal/config"
	"thaiocr/internal/document"
	"thaiocr/internal/engine"
	"thaiocr/internal/logger"
	"thaiocr/internal/pipeline"
)

// exitCodePartial is returned when the run completed but some pages failed
// recognition. The output file is still written, with failed ordinals
// present as empty bodies.
const exitCodePartial = 2

var processCmd = &cobra.Command{
	Use:   "process [input-file] [output-file]",
	Short: "Extract Thai text from a PDF or image into a text file",
	Long: `Process a PDF or raster image and write the recognized Thai text to a
UTF-8 output file. PDF inputs are rasterized page by page with Poppler's
pdftoppm, each page is recognized with Tesseract, and page texts are joined
with "----- page N -----" marker lines.

Supported input formats: .pdf, .png, .jpg, .jpeg, .tif, .tiff, .bmp.

A page that fails recognition does not abort the run: its ordinal stays in
the output with an empty body, and the command exits with code 2. Fatal
setup errors (missing engines, unsupported format, unreadable input) exit
with code 1 and write no output.`,
	Example: `  # Extract Thai text from a scanned PDF
  thaiocr process scan.pdf output.txt

  # Single image input
  thaiocr process receipt.png receipt.txt

  # Explicit engine locations (e.g. on Windows)
  thaiocr process scan.pdf out.txt --tesseract-path "C:\Program Files\Tesseract-OCR\tesseract.exe" --poppler-path "C:\Program Files\poppler\Library\bin"

  # Higher resolution rasterization and one retry per failed page
  thaiocr process scan.pdf out.txt --dpi 600 --retry 1

  # Recognize with Google Cloud Vision instead of local Tesseract
  thaiocr process scan.pdf out.txt --engine vision`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("tesseract-path", "", "Path to the tesseract executable (default: auto-detect)")
	processCmd.Flags().String("poppler-path", "", "Path to pdftoppm or its directory (default: auto-detect)")
	processCmd.Flags().String("lang", "tha", "Recognition language identifier")
	processCmd.Flags().Int("dpi", engine.DefaultDPI, "PDF rasterization resolution")
	processCmd.Flags().Int("psm", engine.DefaultPSM, "Tesseract page segmentation mode")
	processCmd.Flags().String("engine", "tesseract", "Recognition engine: tesseract or vision")
	processCmd.Flags().Int("retry", 0, "Re-attempts per page after a recognition failure")
	processCmd.Flags().Int("timeout", 0, "Processing timeout in seconds (0 = no timeout)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	cfg := loadRunConfig(cmd, log)
	inputPath, outputPath := args[0], args[1]
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Str("engine", cfg.Engine).
		Str("language", cfg.Language).
		Msg("Starting OCR processing")

	ctx, cancel := signalContext(timeoutSecs, log)
	defer cancel()

	// Validate the input before resolving engines: a bad path or format is
	// fatal regardless of engine availability.
	src, err := document.DetectSource(inputPath)
	if err != nil {
		return handleProcessError(err, log)
	}

	processor, closeEngines, err := buildProcessor(ctx, cfg, src, log)
	if err != nil {
		return handleProcessError(err, log)
	}
	defer closeEngines()

	processor.Retry = cfg.Retry
	processor.Progress = func(page, total int) {
		log.Info().Int("page", page).Int("total", total).Msg("Page processed")
	}

	outcome, err := processor.Run(ctx, inputPath)
	if err != nil {
		return handleProcessError(err, log)
	}

	if outcome.Cancelled {
		// Partial results stay in memory; nothing is persisted on a
		// cancelled run.
		log.Warn().
			Int("pages_done", outcome.PagesTotal).
			Msg("Processing cancelled, no output written")
		return fmt.Errorf("processing cancelled after %d page(s)", outcome.PagesTotal)
	}

	if err := pipeline.Write(outcome, outputPath); err != nil {
		return handleProcessError(err, log)
	}

	log.Info().
		Int("pages_total", outcome.PagesTotal).
		Int("pages_failed", outcome.PagesFailed).
		Dur("duration", outcome.Duration).
		Str("output", outputPath).
		Msg("Text saved")

	if outcome.PagesFailed > 0 {
		for _, pageErr := range outcome.Errors {
			log.Warn().Str("page_error", pageErr).Msg("Page failed recognition")
		}
		fmt.Fprintf(os.Stderr, "Completed with %d of %d page(s) failed; output written to %s\n",
			outcome.PagesFailed, outcome.PagesTotal, outputPath)
		os.Exit(exitCodePartial)
	}

	return nil
}

// loadRunConfig merges environment configuration with explicitly set flags;
// flags win.
func loadRunConfig(cmd *cobra.Command, log zerolog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Invalid environment configuration, using defaults")
		cfg = &config.Config{Language: "tha", DPI: engine.DefaultDPI, PSM: engine.DefaultPSM, Engine: "tesseract"}
	}

	if cmd.Flags().Changed("tesseract-path") {
		cfg.TesseractPath, _ = cmd.Flags().GetString("tesseract-path")
	}
	if cmd.Flags().Changed("poppler-path") {
		cfg.PopplerPath, _ = cmd.Flags().GetString("poppler-path")
	}
	if cmd.Flags().Changed("lang") {
		cfg.Language, _ = cmd.Flags().GetString("lang")
	}
	if cmd.Flags().Changed("dpi") {
		cfg.DPI, _ = cmd.Flags().GetInt("dpi")
	}
	if cmd.Flags().Changed("psm") {
		cfg.PSM, _ = cmd.Flags().GetInt("psm")
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine, _ = cmd.Flags().GetString("engine")
	}
	if cmd.Flags().Changed("retry") {
		cfg.Retry, _ = cmd.Flags().GetInt("retry")
	}

	return cfg
}

// buildProcessor resolves and constructs the engine bindings the input
// needs. Resolution is fail-fast: a missing engine aborts before any page
// work. The rasterizer is only resolved for PDF inputs, so single-image runs
// do not require a Poppler install.
func buildProcessor(ctx context.Context, cfg *config.Config, src document.Source, log zerolog.Logger) (*pipeline.Processor, func(), error) {
	probe := engine.SystemProbe()
	closeEngines := func() {}

	var recognizer engine.Recognizer
	switch cfg.Engine {
	case "vision":
		visionRec, err := engine.NewVisionRecognizer(ctx, cfg.Language)
		if err != nil {
			return nil, nil, err
		}
		recognizer = visionRec
		closeEngines = func() {
			if closeErr := visionRec.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close Vision client")
			}
		}
	case "tesseract", "":
		tessPath, err := engine.ResolveTesseract(cfg.TesseractPath, probe)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("tesseract", tessPath).Msg("Resolved recognition engine")
		recognizer, err = engine.NewTesseractRecognizer(ctx, tessPath, cfg.Language, cfg.PSM)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unknown recognition engine %q (expected tesseract or vision)", cfg.Engine)
	}

	var rasterizer engine.Rasterizer
	if src.Kind == document.KindPDF {
		ppmPath, err := engine.ResolvePDFToPPM(cfg.PopplerPath, probe)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("pdftoppm", ppmPath).Msg("Resolved rasterization engine")
		rasterizer = engine.NewPopplerRasterizer(ppmPath, cfg.DPI)
	}

	return pipeline.New(recognizer, rasterizer), closeEngines, nil
}

// signalContext creates a context cancelled by an optional timeout and by
// SIGINT/SIGTERM, so a Ctrl-C stops the run at the next page boundary.
func signalContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, cancelling at next page boundary")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// handleProcessError provides user-friendly error messages for pipeline
// failures.
func handleProcessError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("processing timed out. Try increasing --timeout or processing a smaller document")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("processing was cancelled")
	case errors.Is(err, document.ErrUnsupportedFormat):
		return fmt.Errorf("%w (supported: %v)", err, document.SupportedExtensions())
	case errors.Is(err, engine.ErrEngineNotFound):
		return err
	case errors.Is(err, engine.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured for --engine vision. Set "+
			"GOOGLE_APPLICATION_CREDENTIALS to a service account key file or GOOGLE_CREDENTIALS "+
			"to inline JSON credentials: %w", err)
	case errors.Is(err, engine.ErrRasterizationFailed):
		return fmt.Errorf("PDF rasterization failed. Check that the file is a valid PDF and Poppler is installed correctly: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}
