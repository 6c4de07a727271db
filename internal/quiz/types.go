package quiz

import (
	"time"

	"github.com/gokatarajesh/math-quiz/internal/quiz/scoring"
)

// Screen is a navigation state.
type Screen string

const (
	ScreenLanding       Screen = "landing"
	ScreenSubjectSelect Screen = "subject_select"
	ScreenQuestion      Screen = "question"
)

// Strategy names a question selection policy.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyRandom     Strategy = "random"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategySequential || s == StrategyRandom
}

// Options fixes the variant a session runs in.
type Options struct {
	Strategy     Strategy `json:"strategy"`
	Timed        bool     `json:"timed"`
	TimerSeconds int      `json:"timer_seconds,omitempty"`
}

// Response is a recorded answer for one question.
type Response = scoring.Response

// Feedback is the outcome of the last submission, shown until the user moves on.
type Feedback struct {
	Subject     string `json:"subject"`
	Index       int    `json:"index"`
	IsCorrect   bool   `json:"is_correct"`
	Choice      int    `json:"choice"`
	ChoiceText  string `json:"choice_text"`
	Correct     int    `json:"correct"`
	CorrectText string `json:"correct_text"`
	Explanation string `json:"explanation,omitempty"`
}

// Session is one user's in-memory quiz state. It is owned by a single
// interactive session and never shared.
type Session struct {
	ID            string                      `json:"id"`
	Options       Options                     `json:"options"`
	Screen        Screen                      `json:"screen"`
	ActiveSubject string                      `json:"active_subject,omitempty"`
	CurrentIndex  int                         `json:"current_index"`
	Responses     map[string]map[int]Response `json:"responses"`
	LastDrawn     map[string]int              `json:"last_drawn,omitempty"`
	Timer         *Timer                      `json:"timer,omitempty"`
	LastFeedback  *Feedback                   `json:"last_feedback,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// Action types accepted by Service.Apply.
const (
	ActionStart          = "start"
	ActionBegin          = "begin"
	ActionSelectSubject  = "select_subject"
	ActionGoto           = "goto"
	ActionNext           = "next"
	ActionPrev           = "prev"
	ActionSubmit         = "submit"
	ActionRestart        = "restart"
	ActionReturn         = "return"
	ActionBackToSubjects = "back_to_subjects"
	ActionRefresh        = "refresh"
)

// Action is a user intent from a presentation layer.
type Action struct {
	Type    string `json:"type"`
	Subject string `json:"subject,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Choice  *int   `json:"choice,omitempty"`
}
