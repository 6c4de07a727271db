package quiz

import (
	"time"

	"github.com/gokatarajesh/math-quiz/internal/question"
	"github.com/gokatarajesh/math-quiz/internal/quiz/scoring"
)

// NewSession creates a session on the landing screen.
func NewSession(id string, opts Options, now time.Time) *Session {
	if !opts.Strategy.Valid() {
		opts.Strategy = StrategySequential
	}
	return &Session{
		ID:        id,
		Options:   opts,
		Screen:    ScreenLanding,
		Responses: map[string]map[int]Response{},
		LastDrawn: map[string]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectSubject makes subject active and moves to its first question.
// Switching to a different subject clears that subject's earlier responses
// and draw history so the attempt starts fresh; selecting the active subject
// again keeps them.
func (s *Session) SelectSubject(bank question.Bank, subject string) error {
	if _, ok := bank.Subject(subject); !ok {
		return ErrUnknownSubject
	}
	if subject != s.ActiveSubject {
		delete(s.Responses, subject)
		delete(s.LastDrawn, subject)
	}
	s.ActiveSubject = subject
	s.CurrentIndex = 0
	s.LastFeedback = nil
	return nil
}

// SetIndex clamps i into the active subject's list. It is a no-op when the
// list is empty.
func (s *Session) SetIndex(bank question.Bank, i int) {
	n := len(bank.Questions(s.ActiveSubject))
	if n == 0 {
		return
	}
	s.CurrentIndex = Clamp(i, n)
}

// RecordAnswer stores the outcome for (subject, index), replacing any earlier
// entry, and returns whether the choice was correct.
func (s *Session) RecordAnswer(subject string, index, choice, correct int) bool {
	isCorrect := choice == correct
	if s.Responses == nil {
		s.Responses = map[string]map[int]Response{}
	}
	if s.Responses[subject] == nil {
		s.Responses[subject] = map[int]Response{}
	}
	s.Responses[subject][index] = Response{Choice: choice, IsCorrect: isCorrect}
	return isCorrect
}

// SavedChoice returns the recorded choice for (subject, index), if any.
func (s *Session) SavedChoice(subject string, index int) (int, bool) {
	r, ok := s.Responses[subject][index]
	if !ok {
		return 0, false
	}
	return r.Choice, true
}

// CurrentQuestion returns the active question, its index and the subject's
// size. The stored index is clamped first, so a bank that shrank on reload
// never yields an out-of-range read.
func (s *Session) CurrentQuestion(bank question.Bank) (question.Question, int, int, bool) {
	qs := bank.Questions(s.ActiveSubject)
	if len(qs) == 0 {
		return question.Question{}, 0, 0, false
	}
	s.CurrentIndex = Clamp(s.CurrentIndex, len(qs))
	return qs[s.CurrentIndex], s.CurrentIndex, len(qs), true
}

// Progress summarizes the active subject.
func (s *Session) Progress(bank question.Bank) scoring.Summary {
	return scoring.Summarize(s.Responses[s.ActiveSubject], len(bank.Questions(s.ActiveSubject)))
}

// ClearResponses forgets every recorded answer.
func (s *Session) ClearResponses() {
	s.Responses = map[string]map[int]Response{}
	s.LastDrawn = map[string]int{}
	s.LastFeedback = nil
}

// Restart clears the active subject's answers and returns to its first
// question (or a fresh draw), restarting the timer.
func (s *Session) Restart(bank question.Bank, r Rand, now time.Time) error {
	if s.Screen != ScreenQuestion {
		return ErrInvalidTransition
	}
	delete(s.Responses, s.ActiveSubject)
	delete(s.LastDrawn, s.ActiveSubject)
	s.CurrentIndex = 0
	s.enterQuestion(bank, r, now, true)
	return nil
}

// CanPrev reports whether a sequential step back is possible.
func (s *Session) CanPrev() bool {
	return s.Options.Strategy == StrategySequential && s.CurrentIndex > 0
}

// CanNext reports whether Next would move to another question.
func (s *Session) CanNext(bank question.Bank) bool {
	n := len(bank.Questions(s.ActiveSubject))
	if s.Options.Strategy == StrategyRandom {
		return n > 1
	}
	return s.CurrentIndex < n-1
}

// RemainingSeconds polls the timer. ok is false for untimed sessions or when
// no question is running.
func (s *Session) RemainingSeconds(now time.Time) (remaining int, expired bool, ok bool) {
	if s.Timer == nil {
		return 0, false, false
	}
	remaining = s.Timer.Remaining(now)
	return remaining, s.Timer.Expired, true
}

// enterQuestion prepares the question screen: a draw for the random strategy
// when fresh is set or nothing was drawn yet, and a new timer when timed.
func (s *Session) enterQuestion(bank question.Bank, r Rand, now time.Time, fresh bool) {
	s.Screen = ScreenQuestion
	s.LastFeedback = nil
	if s.Options.Strategy == StrategyRandom {
		if _, drawn := s.LastDrawn[s.ActiveSubject]; fresh || !drawn {
			s.draw(bank, r)
		}
	}
	s.startTimer(now)
}

func (s *Session) draw(bank question.Bank, r Rand) {
	n := len(bank.Questions(s.ActiveSubject))
	if n == 0 {
		return
	}
	last, ok := s.LastDrawn[s.ActiveSubject]
	if !ok {
		last = -1
	}
	idx := Draw(r, n, last)
	if s.LastDrawn == nil {
		s.LastDrawn = map[string]int{}
	}
	s.LastDrawn[s.ActiveSubject] = idx
	s.CurrentIndex = idx
}

func (s *Session) startTimer(now time.Time) {
	if !s.Options.Timed {
		s.Timer = nil
		return
	}
	s.Timer = NewTimer(now, s.Options.TimerSeconds)
}
