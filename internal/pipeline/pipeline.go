// Package pipeline runs the extract, gate and generate steps for one PDF.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/pdfquiz/internal/extract"
	"github.com/abhisek/pdfquiz/internal/quiz"
)

// MinTextLength is the number of characters, after trimming surrounding
// whitespace, required before questions are generated.
const MinTextLength = 100

// ExtractionError is the fatal failure of the extraction step.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Failed to extract text from PDF: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Pipeline turns a PDF into an Output document.
type Pipeline struct {
	extractor extract.Extractor
	generator quiz.Generator
	log       *zap.Logger
}

// New creates a Pipeline. log may be nil.
func New(extractor extract.Extractor, generator quiz.Generator, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{extractor: extractor, generator: generator, log: log}
}

// Run processes one PDF. The returned Output is always populated. The error
// is non-nil only when extraction fails, in which case the caller should
// exit with a failure status after writing the Output. Generation failures
// are reported in Output.Error and do not produce an error.
func (p *Pipeline) Run(ctx context.Context, pdfPath string) (*Output, error) {
	text, err := p.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		xerr := &ExtractionError{Err: err}
		p.log.Error("pipeline: extraction failed", zap.String("path", pdfPath), zap.Error(err))
		return &Output{Text: "", Questions: []quiz.Question{}, Error: xerr.Error()}, xerr
	}

	out := &Output{Text: text, Questions: []quiz.Question{}}

	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < MinTextLength {
		out.Warning = fmt.Sprintf(
			"Extracted text is too short (%d chars) or empty to generate questions. Minimum required: %d chars.",
			n, MinTextLength,
		)
		p.log.Warn("pipeline: text too short, skipping generation",
			zap.Int("chars", n), zap.Int("min_chars", MinTextLength))
		return out, nil
	}

	questions, err := p.generator.Generate(ctx, text)
	if err != nil {
		out.Error = err.Error()
		p.log.Warn("pipeline: question generation failed", zap.Error(err))
		return out, nil
	}

	if questions != nil {
		out.Questions = questions
	}
	p.log.Info("pipeline: generated questions", zap.Int("count", len(questions)))
	return out, nil
}
