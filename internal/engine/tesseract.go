package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DefaultPSM is the page segmentation mode used when none is configured:
// assume a single uniform block of text, which suits scanned Thai documents.
const DefaultPSM = 6

// TesseractRecognizer implements Recognizer by invoking the Tesseract
// executable once per page, feeding the page image on stdin and reading the
// recognized text from stdout.
type TesseractRecognizer struct {
	bin      string
	language string
	psm      int

	// Tesseract is not documented as safe for concurrent invocation from one
	// adapter; calls are serialized.
	mu sync.Mutex
}

// NewTesseractRecognizer creates a recognizer bound to the given executable
// and verifies the installation by probing `tesseract --version`. A probe
// failure is a setup error, raised before any page is processed.
func NewTesseractRecognizer(ctx context.Context, bin, language string, psm int) (*TesseractRecognizer, error) {
	const op = "NewTesseractRecognizer"

	if language == "" {
		language = "tha"
	}
	if psm == 0 {
		psm = DefaultPSM
	}

	cmd := exec.CommandContext(ctx, bin, "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, WrapEngineError(op, fmt.Errorf("%w: recognition engine (tesseract)", ErrEngineNotFound),
			fmt.Sprintf("version probe of %s failed: %v: %s", bin, err, firstLine(out)))
	}

	return &TesseractRecognizer{bin: bin, language: language, psm: psm}, nil
}

// Recognize runs Tesseract on one encoded page image and returns the
// extracted text with surrounding whitespace trimmed.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	const op = "Recognize"

	t.mu.Lock()
	defer t.mu.Unlock()

	cmd := exec.CommandContext(ctx, t.bin,
		"stdin", "stdout",
		"-l", t.language,
		"--psm", strconv.Itoa(t.psm),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(image)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", WrapEngineError(op, ErrRecognitionFailed,
			fmt.Sprintf("tesseract: %v: %s", err, firstLine(stderr.Bytes())))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// firstLine reduces engine output to its first non-empty line for error
// details.
func firstLine(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
