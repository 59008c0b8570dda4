package quiz

import "fmt"

const promptTemplate = "Generate %d multiple-choice questions (MCQs) from the following text. " +
	"Each question should have %d options (A, B, C, D) and specify the correct answer letter. " +
	"Ensure questions are clear, concise, and directly related to the text. " +
	"Return the output as a JSON array of objects, where each object has 'question', " +
	"'options' (an array of strings), and 'correct_answer' (a string like 'A', 'B', 'C', or 'D').\n\n" +
	"Text: %s"

// BuildPrompt returns the single user message sent to the model. The text is
// embedded verbatim.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, QuestionCount, OptionCount, text)
}
