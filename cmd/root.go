package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"thaiocr/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "thaiocr",
	Short: "Thai OCR - extract Thai text from PDFs and images",
	Long: `Thai OCR extracts Thai-language text from PDF documents and raster
images. PDF pages are rasterized with Poppler and recognized page by page
with Tesseract; per-page results are assembled into a single UTF-8 text file.

Tesseract (with the "tha" trained data) must be installed, and Poppler is
required for PDF inputs. Both are auto-detected from the system PATH and
common install locations, or can be pointed at explicitly.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Thai OCR executed")

		fmt.Println("Welcome to Thai OCR!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
