package question

import "fmt"

// classify turns a decoded record into a Question and marks it malformed when
// it cannot be evaluated. Malformed records keep their slot so indices stay
// stable across the subject.
func classify(subject string, index int, rec rawRecord) Question {
	q := Question{
		Prompt:      rec.prompt,
		Image:       rec.image,
		Explanation: rec.explanation,
		Answer:      rec.answer,
	}
	if rec.hasChoices {
		q.Choices = rec.choices
	} else {
		q.Choices = append([]string(nil), DefaultChoiceLabels...)
	}

	if problem := validate(rec, q); problem != "" {
		q.Issue = &MalformedQuestionError{Subject: subject, Index: index, Problem: problem}
	}
	return q
}

func validate(rec rawRecord, q Question) string {
	switch {
	case rec.problem != "":
		return rec.problem
	case len(q.Choices) < 2:
		return "needs at least two choices"
	case q.Answer == nil:
		return "answer is missing"
	case *q.Answer < 0 || *q.Answer >= len(q.Choices):
		return fmt.Sprintf("answer %d is outside choices 0..%d", *q.Answer, len(q.Choices)-1)
	}
	return ""
}
