package quiz

import "encoding/json"

// QuestionCount is the number of questions requested per document.
const QuestionCount = 10

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Question is one multiple-choice question exactly as the model produced it.
// The expected shape is a "question" string, OptionCount "options" and a
// "correct_answer" letter "A" to "D". Deviations are logged, not corrected,
// and unknown keys are kept.
type Question = json.RawMessage
