package quiz

import "context"

// Generator produces multiple-choice questions from document text.
type Generator interface {
	// Generate returns the questions in the order the model produced them.
	// A response without generated content yields an empty list and no
	// error. Every other failure is a *GenerationError.
	Generate(ctx context.Context, text string) ([]Question, error)
}
