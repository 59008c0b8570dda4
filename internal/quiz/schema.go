package quiz

import "github.com/abhisek/pdfquiz/internal/llm"

// QuestionListSchema constrains the model output to a list of four-option
// questions.
var QuestionListSchema = &llm.Schema{
	Name:        "mcq-list",
	Description: "A list of multiple-choice questions generated from a document",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type": "string",
				},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": OptionCount,
					"maxItems": OptionCount,
				},
				"correct_answer": map[string]any{
					"type":        "string",
					"description": "Letter of the correct option: A, B, C or D",
				},
			},
			"required": []any{"question", "options", "correct_answer"},
		},
	},
}
