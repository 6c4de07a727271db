package quiz

import "github.com/gokatarajesh/math-quiz/internal/question"

// Evaluation is the result of checking one choice.
type Evaluation struct {
	IsCorrect bool
	Selected  int
	Correct   int
}

// EvaluateIndex compares a selected choice with the stored correct index.
// A nil correct index is reported as ErrUnanswerable, never as incorrect.
func EvaluateIndex(selected int, correct *int) (Evaluation, error) {
	if correct == nil {
		return Evaluation{}, ErrUnanswerable
	}
	return Evaluation{
		IsCorrect: selected == *correct,
		Selected:  selected,
		Correct:   *correct,
	}, nil
}

// Evaluate checks a choice against a loaded question. Records classified as
// malformed at load time return their *question.MalformedQuestionError.
func Evaluate(q question.Question, selected int) (Evaluation, error) {
	if q.Issue != nil {
		return Evaluation{}, q.Issue
	}
	if selected < 0 || selected >= len(q.Choices) {
		return Evaluation{}, ErrChoiceOutOfRange
	}
	return EvaluateIndex(selected, q.Answer)
}
