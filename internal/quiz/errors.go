package quiz

import "fmt"

// ErrorKind classifies a generation failure.
type ErrorKind int

const (
	// KindAPI covers transport failures and non-success HTTP statuses.
	KindAPI ErrorKind = iota
	// KindParse covers an inner payload that is not valid JSON or does not
	// have the requested shape.
	KindParse
	// KindUnexpected is everything else.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindParse:
		return "parse"
	default:
		return "unexpected"
	}
}

// GenerationError is a non-fatal failure of question generation. Its message
// is what callers see in the output document.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("Failed to generate questions (API error): %v", e.Err)
	case KindParse:
		return fmt.Sprintf("Failed to parse LLM response JSON: %v", e.Err)
	default:
		return fmt.Sprintf("An unexpected error occurred during question generation: %v", e.Err)
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }
