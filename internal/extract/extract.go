package extract

import (
	"context"
	"fmt"
)

// Extractor extracts the text content of a PDF file.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Config selects and configures the extraction backend.
type Config struct {
	// Provider is "local" (in-process parser) or "pdftotext".
	Provider      string `mapstructure:"provider"`
	PdfToTextPath string `mapstructure:"pdftotext_path"`
}

// New creates an Extractor based on config.
func New(cfg Config) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPDF(), nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	default:
		return nil, fmt.Errorf("extract: unknown provider %q", cfg.Provider)
	}
}
