package quiz

import (
	"time"

	"github.com/gokatarajesh/math-quiz/internal/question"
)

// Navigation state machine:
//
//	landing --start--> question            (untimed)
//	landing --start--> subject_select      (timed)
//	subject_select --begin(subject)--> question
//	question --next/prev/goto/select_subject/restart--> question
//	question --back_to_subjects--> subject_select   (timed)
//	any --return--> landing
//
// Transitions not listed return ErrInvalidTransition and leave the session
// untouched. Responses survive every transition except a subject switch,
// restart, or forced bank refresh.

// Start leaves the landing screen.
func (s *Session) Start(bank question.Bank, r Rand, now time.Time) error {
	if s.Screen != ScreenLanding {
		return ErrInvalidTransition
	}
	if s.Options.Timed {
		s.Screen = ScreenSubjectSelect
		s.LastFeedback = nil
		return nil
	}
	if _, ok := bank.Subject(s.ActiveSubject); !ok {
		s.ActiveSubject = ""
		if subjects := bank.SelectableSubjects(); len(subjects) > 0 {
			_ = s.SelectSubject(bank, subjects[0])
		}
	}
	s.enterQuestion(bank, r, now, false)
	return nil
}

// Begin starts a quiz on subject from the subject selection screen.
func (s *Session) Begin(bank question.Bank, subject string, r Rand, now time.Time) error {
	if s.Screen != ScreenSubjectSelect {
		return ErrInvalidTransition
	}
	if err := s.SelectSubject(bank, subject); err != nil {
		return err
	}
	s.enterQuestion(bank, r, now, true)
	return nil
}

// SwitchSubject changes subject while on the question screen.
func (s *Session) SwitchSubject(bank question.Bank, subject string, r Rand, now time.Time) error {
	if s.Screen != ScreenQuestion {
		return ErrInvalidTransition
	}
	if subject == s.ActiveSubject {
		return nil
	}
	if err := s.SelectSubject(bank, subject); err != nil {
		return err
	}
	s.enterQuestion(bank, r, now, true)
	return nil
}

// Return goes back to the landing screen from anywhere. The running question
// is abandoned; recorded responses are kept.
func (s *Session) Return() {
	s.Screen = ScreenLanding
	s.Timer = nil
	s.LastFeedback = nil
}

// BackToSubjects leaves the question for subject selection (timed variant).
func (s *Session) BackToSubjects() error {
	if !s.Options.Timed || s.Screen != ScreenQuestion {
		return ErrInvalidTransition
	}
	s.Screen = ScreenSubjectSelect
	s.Timer = nil
	s.LastFeedback = nil
	return nil
}

// Next advances: one step for the sequential strategy (no-op at the end), a
// fresh draw excluding the question on screen for the random strategy.
func (s *Session) Next(bank question.Bank, r Rand, now time.Time) error {
	if s.Screen != ScreenQuestion {
		return ErrInvalidTransition
	}
	n := len(bank.Questions(s.ActiveSubject))
	if n == 0 {
		return nil
	}
	if s.Options.Strategy == StrategyRandom {
		s.draw(bank, r)
		s.advanced(now)
		return nil
	}
	s.moveTo(bank, Step(s.CurrentIndex, 1, n), now)
	return nil
}

// Prev steps back one question (sequential strategy only; no-op at the start).
func (s *Session) Prev(bank question.Bank, now time.Time) error {
	if s.Screen != ScreenQuestion || s.Options.Strategy != StrategySequential {
		return ErrInvalidTransition
	}
	n := len(bank.Questions(s.ActiveSubject))
	if n == 0 {
		return nil
	}
	s.moveTo(bank, Step(s.CurrentIndex, -1, n), now)
	return nil
}

// Goto jumps to index i, clamped into range. Under the random strategy the
// question jumped to counts as the last draw, so Next will not repeat it.
func (s *Session) Goto(bank question.Bank, i int, now time.Time) error {
	if s.Screen != ScreenQuestion {
		return ErrInvalidTransition
	}
	s.moveTo(bank, i, now)
	if s.Options.Strategy == StrategyRandom && len(bank.Questions(s.ActiveSubject)) > 0 {
		if s.LastDrawn == nil {
			s.LastDrawn = map[string]int{}
		}
		s.LastDrawn[s.ActiveSubject] = s.CurrentIndex
	}
	return nil
}

// Submit evaluates choice for the current question and records it. Expired
// timers, malformed questions and out-of-range choices are rejected without
// touching the responses.
func (s *Session) Submit(bank question.Bank, choice int, now time.Time) (Feedback, error) {
	if s.Screen != ScreenQuestion {
		return Feedback{}, ErrInvalidTransition
	}
	q, idx, _, ok := s.CurrentQuestion(bank)
	if !ok {
		return Feedback{}, ErrNoQuestions
	}
	if _, expired, timed := s.RemainingSeconds(now); timed && expired {
		return Feedback{}, ErrTimeExpired
	}
	eval, err := Evaluate(q, choice)
	if err != nil {
		return Feedback{}, err
	}

	s.RecordAnswer(s.ActiveSubject, idx, eval.Selected, eval.Correct)
	fb := Feedback{
		Subject:     s.ActiveSubject,
		Index:       idx,
		IsCorrect:   eval.IsCorrect,
		Choice:      eval.Selected,
		ChoiceText:  q.Choices[eval.Selected],
		Correct:     eval.Correct,
		CorrectText: q.Choices[eval.Correct],
		Explanation: q.Explanation,
	}
	s.LastFeedback = &fb
	return fb, nil
}

func (s *Session) moveTo(bank question.Bank, i int, now time.Time) {
	before := s.CurrentIndex
	s.SetIndex(bank, i)
	if s.CurrentIndex != before {
		s.advanced(now)
	}
}

// advanced resets per-question state after the question changed.
func (s *Session) advanced(now time.Time) {
	s.LastFeedback = nil
	s.startTimer(now)
}
