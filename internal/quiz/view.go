package quiz

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gokatarajesh/math-quiz/internal/question"
	"github.com/gokatarajesh/math-quiz/internal/quiz/scoring"
)

// View is everything a presentation layer needs to redraw one session.
type View struct {
	SessionID     string           `json:"session_id"`
	Screen        Screen           `json:"screen"`
	Options       Options          `json:"options"`
	Notice        string           `json:"notice,omitempty"`
	Stats         question.Stats   `json:"stats"`
	Subjects      []SubjectView    `json:"subjects"`
	ActiveSubject string           `json:"active_subject,omitempty"`
	Question      *QuestionView    `json:"question,omitempty"`
	Timer         *TimerView       `json:"timer,omitempty"`
	Progress      *scoring.Summary `json:"progress,omitempty"`
	Feedback      *Feedback        `json:"feedback,omitempty"`
}

// SubjectView is one entry of the subject picker.
type SubjectView struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
	Answered  int    `json:"answered"`
	Correct   int    `json:"correct"`
}

// QuestionView is the question currently on screen.
type QuestionView struct {
	Subject     string   `json:"subject"`
	Index       int      `json:"index"`
	Number      int      `json:"number"`
	Total       int      `json:"total"`
	Prompt      string   `json:"prompt"`
	ImageURL    string   `json:"image_url,omitempty"`
	ImageError  string   `json:"image_error,omitempty"`
	Choices     []string `json:"choices"`
	SavedChoice *int     `json:"saved_choice,omitempty"`
	Malformed   string   `json:"malformed,omitempty"`
	CanPrev     bool     `json:"can_prev"`
	CanNext     bool     `json:"can_next"`

	// ImageFile is the resolved on-disk path, for in-process renderers.
	ImageFile string `json:"-"`
}

// TimerView is the polled countdown.
type TimerView struct {
	DurationSeconds  int  `json:"duration_seconds"`
	RemainingSeconds int  `json:"remaining_seconds"`
	Expired          bool `json:"expired"`
}

// render builds the view. It polls the timer, which may mark it expired.
func (s *Service) render(sess *Session, bank question.Bank, now time.Time) View {
	v := View{
		SessionID:     sess.ID,
		Screen:        sess.Screen,
		Options:       sess.Options,
		Stats:         bank.Stats(),
		ActiveSubject: sess.ActiveSubject,
		Feedback:      sess.LastFeedback,
	}
	if notice := s.bank.Notice(); notice != nil {
		v.Notice = notice.Error()
	}
	for _, name := range bank.SelectableSubjects() {
		sum := scoring.Summarize(sess.Responses[name], len(bank.Questions(name)))
		v.Subjects = append(v.Subjects, SubjectView{
			Name:      name,
			Questions: sum.Total,
			Answered:  sum.Answered,
			Correct:   sum.Correct,
		})
	}

	if sess.Screen != ScreenQuestion {
		return v
	}

	if q, idx, total, ok := sess.CurrentQuestion(bank); ok {
		qv := &QuestionView{
			Subject: sess.ActiveSubject,
			Index:   idx,
			Number:  idx + 1,
			Total:   total,
			Prompt:  strings.TrimSpace(q.Prompt),
			Choices: q.Choices,
			CanPrev: sess.CanPrev(),
			CanNext: sess.CanNext(bank),
		}
		if choice, ok := sess.SavedChoice(sess.ActiveSubject, idx); ok && choice >= 0 && choice < len(q.Choices) {
			qv.SavedChoice = &choice
		}
		if q.Issue != nil {
			qv.Malformed = q.Issue.Error()
		}
		s.attachImage(qv, q.Image)
		v.Question = qv
	}

	progress := sess.Progress(bank)
	v.Progress = &progress

	if remaining, expired, ok := sess.RemainingSeconds(now); ok {
		v.Timer = &TimerView{
			DurationSeconds:  sess.Timer.DurationSeconds,
			RemainingSeconds: remaining,
			Expired:          expired,
		}
	}
	return v
}

func (s *Service) attachImage(qv *QuestionView, ref string) {
	if s.assets == nil || ref == "" {
		return
	}
	full, err := s.assets.Resolve(ref)
	if err != nil {
		if !errors.Is(err, question.ErrNoImage) {
			qv.ImageError = err.Error()
		}
		return
	}
	qv.ImageFile = full
	if rel, ok := s.assets.Rel(ref); ok {
		qv.ImageURL = s.imageBaseURL + escapePath(rel)
	}
}

func escapePath(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
