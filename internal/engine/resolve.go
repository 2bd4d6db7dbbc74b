package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Paths holds the resolved executable locations of both external engines.
type Paths struct {
	// Tesseract is the recognition engine executable.
	Tesseract string

	// PDFToPPM is the rasterization engine executable (Poppler's pdftoppm).
	PDFToPPM string
}

// Probe abstracts the environment lookups engine resolution depends on, so
// resolution is a pure function over an injected probe and stays testable
// without touching a real filesystem.
type Probe struct {
	// GOOS selects the platform default install locations.
	GOOS string

	// LookPath searches the system PATH for an executable.
	LookPath func(file string) (string, error)

	// FileExists reports whether path exists and is a regular file.
	FileExists func(path string) bool
}

// SystemProbe returns a probe backed by the real environment.
func SystemProbe() Probe {
	return Probe{
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		FileExists: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && info.Mode().IsRegular()
		},
	}
}

// defaultCandidates lists platform-specific install locations tried after an
// explicit config path and the system PATH, per engine binary name.
func defaultCandidates(goos, binary string) []string {
	switch goos {
	case "windows":
		if binary == "tesseract" {
			return []string{`C:\Program Files\Tesseract-OCR\tesseract.exe`}
		}
		return []string{`C:\Program Files\poppler\Library\bin\` + binary + `.exe`}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/" + binary,
			"/usr/local/bin/" + binary,
		}
	default:
		return []string{
			"/usr/bin/" + binary,
			"/usr/local/bin/" + binary,
		}
	}
}

// ResolveEngines locates both external engines before any page work starts.
// For each engine it tries, in order: the explicitly configured path, the
// system PATH, and platform default install locations. The configured
// Poppler path may point at either the pdftoppm executable or the directory
// containing it (the conventional Windows layout).
//
// The returned error wraps ErrEngineNotFound and names the missing engine.
func ResolveEngines(tesseractPath, popplerPath string, probe Probe) (Paths, error) {
	tess, err := ResolveTesseract(tesseractPath, probe)
	if err != nil {
		return Paths{}, err
	}

	ppm, err := ResolvePDFToPPM(popplerPath, probe)
	if err != nil {
		return Paths{}, err
	}

	return Paths{Tesseract: tess, PDFToPPM: ppm}, nil
}

// ResolveTesseract locates the recognition engine executable.
func ResolveTesseract(configured string, probe Probe) (string, error) {
	path, err := resolveOne("recognition engine (tesseract)", "tesseract", configured, probe)
	if err != nil {
		return "", fmt.Errorf("%w; install Tesseract from https://github.com/tesseract-ocr/tesseract or set --tesseract-path", err)
	}
	return path, nil
}

// ResolvePDFToPPM locates the rasterization engine executable.
func ResolvePDFToPPM(configured string, probe Probe) (string, error) {
	path, err := resolveOne("rasterization engine (pdftoppm)", "pdftoppm", configured, probe)
	if err != nil {
		return "", fmt.Errorf("%w; install Poppler from https://poppler.freedesktop.org or set --poppler-path", err)
	}
	return path, nil
}

func resolveOne(engineName, binary, configured string, probe Probe) (string, error) {
	if configured != "" {
		if probe.FileExists(configured) {
			return configured, nil
		}
		// A configured directory means "the install's bin directory".
		joined := filepath.Join(configured, exeName(probe.GOOS, binary))
		if probe.FileExists(joined) {
			return joined, nil
		}
		return "", fmt.Errorf("%w: %s: configured path %q does not exist", ErrEngineNotFound, engineName, configured)
	}

	if found, err := probe.LookPath(binary); err == nil {
		return found, nil
	}

	for _, candidate := range defaultCandidates(probe.GOOS, binary) {
		if probe.FileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrEngineNotFound, engineName)
}

func exeName(goos, binary string) string {
	if goos == "windows" {
		return binary + ".exe"
	}
	return binary
}
