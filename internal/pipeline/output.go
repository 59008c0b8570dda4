package pipeline

import (
	"encoding/json"
	"io"

	"github.com/abhisek/pdfquiz/internal/quiz"
)

// Output is the single document written to stdout.
type Output struct {
	Text      string          `json:"text"`
	Questions []quiz.Question `json:"questions"`
	Warning   string          `json:"warning,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ErrorDocument is written when no PDF path was supplied or the command
// could not start.
type ErrorDocument struct {
	Error string `json:"error"`
}

// Write encodes doc as one line of JSON. HTML characters in extracted text
// are left as is.
func Write(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
