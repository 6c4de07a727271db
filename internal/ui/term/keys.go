package term

import (
	"errors"
	"strconv"

	"github.com/gokatarajesh/math-quiz/internal/question"
	"github.com/gokatarajesh/math-quiz/internal/quiz"
)

type keyKind int

const (
	keyNone keyKind = iota
	keyQuit
	keyApply
	keyPickSubject
	keyEnterNumber
)

type keyResult struct {
	kind   keyKind
	action quiz.Action
}

// keyAction maps a key on the landing or question screen to what it does.
func keyAction(view quiz.View, key string) keyResult {
	apply := func(a quiz.Action) keyResult { return keyResult{kind: keyApply, action: a} }

	if key == "q" {
		return keyResult{kind: keyQuit}
	}

	if view.Screen == quiz.ScreenLanding {
		switch key {
		case "enter", "s", " ":
			return apply(quiz.Action{Type: quiz.ActionStart})
		case "f":
			return apply(quiz.Action{Type: quiz.ActionRefresh})
		}
		return keyResult{}
	}

	switch key {
	case "n", "right", "l":
		return apply(quiz.Action{Type: quiz.ActionNext})
	case "p", "left", "h":
		return apply(quiz.Action{Type: quiz.ActionPrev})
	case "g":
		return keyResult{kind: keyEnterNumber}
	case "s":
		if view.Options.Timed {
			return apply(quiz.Action{Type: quiz.ActionBackToSubjects})
		}
		return keyResult{kind: keyPickSubject}
	case "r":
		return apply(quiz.Action{Type: quiz.ActionRestart})
	case "f":
		return apply(quiz.Action{Type: quiz.ActionRefresh})
	case "esc", "home":
		return apply(quiz.Action{Type: quiz.ActionReturn})
	}

	if n, ok := parseNumber(key); ok && n >= 1 && n <= 9 {
		choice := n - 1
		return apply(quiz.Action{Type: quiz.ActionSubmit, Choice: &choice})
	}
	return keyResult{}
}

func parseNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// describe turns a service error into a line for the status bar.
func describe(err error) string {
	var malformed *question.MalformedQuestionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &malformed):
		return "This question cannot be graded: " + malformed.Problem
	case errors.Is(err, quiz.ErrTimeExpired):
		return "Time is up for this question."
	case errors.Is(err, quiz.ErrChoiceOutOfRange):
		return "There is no such choice."
	case errors.Is(err, quiz.ErrNoQuestions):
		return "This subject has no questions."
	case errors.Is(err, quiz.ErrUnanswerable):
		return "This question has no answer recorded."
	case errors.Is(err, quiz.ErrUnknownSubject):
		return "That subject no longer exists."
	case errors.Is(err, quiz.ErrInvalidTransition):
		return "That is not available here."
	default:
		return err.Error()
	}
}
