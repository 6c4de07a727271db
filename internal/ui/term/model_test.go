package term

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/math-quiz/internal/question"
	"github.com/gokatarajesh/math-quiz/internal/quiz"
)

type staticBank struct{ bank question.Bank }

func (b staticBank) Bank(context.Context) question.Bank            { return b.bank }
func (b staticBank) Reload(context.Context) (question.Bank, error) { return b.bank, nil }
func (b staticBank) Notice() error                                 { return nil }

func intPtr(v int) *int { return &v }

func newModel(t *testing.T, opts quiz.Options) Model {
	t.Helper()
	bank := question.Bank{Subjects: []question.Subject{
		{Name: "Algebra", Questions: []question.Question{
			{Prompt: "1 + 0 = ?", Choices: []string{"0", "1", "2"}, Answer: intPtr(1)},
			{Prompt: "2 * 2 = ?", Choices: []string{"2", "4"}, Answer: intPtr(1)},
			{Prompt: "3 - 3 = ?", Choices: []string{"0", "3"}, Answer: intPtr(0)},
		}},
		{Name: "Geometry", Questions: []question.Question{
			{Prompt: "Right angle?", Choices: []string{"90", "180"}, Answer: intPtr(0), Explanation: "A quarter turn."},
		}},
	}}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := quiz.NewService(staticBank{bank: bank}, nil, quiz.NewMemoryStateStore(0), quiz.ServiceOptions{
		Defaults: opts,
		Now:      func() time.Time { return now },
	}, zerolog.Nop())

	view, err := svc.Create(context.Background(), quiz.Overrides{})
	require.NoError(t, err)
	return NewModel(svc, view, Options{NoColor: true})
}

// send feeds msg to the model and runs the resulting command once, feeding
// back a service reply if there is one.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if reply, ok := cmd().(viewMsg); ok {
		next, _ = m.Update(reply)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModelUntimedFlow(t *testing.T) {
	m := newModel(t, quiz.Options{})
	assert.Contains(t, m.View(), "Press enter to start")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, quiz.ScreenQuestion, m.view.Screen)
	assert.Contains(t, m.View(), "Question 1 / 3")
	assert.Contains(t, m.View(), "1 + 0 = ?")

	m = send(t, m, runes("2"))
	assert.Contains(t, m.View(), "Correct!")
	assert.Contains(t, m.View(), "> 2. 1")
	assert.Contains(t, m.View(), "Solved 1 / 3, correct 1")

	m = send(t, m, runes("n"))
	assert.Equal(t, 1, m.view.Question.Index)

	m = send(t, m, runes("g"))
	require.True(t, m.entering)
	m = send(t, m, runes("3"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.entering)
	assert.Equal(t, 2, m.view.Question.Index)

	m = send(t, m, runes("9"))
	assert.Equal(t, "There is no such choice.", m.message)
	assert.Contains(t, m.View(), "There is no such choice.")

	m = send(t, m, runes("s"))
	require.True(t, m.picking)
	assert.Contains(t, m.View(), "Choose a subject")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.picking)
	assert.Equal(t, "Geometry", m.view.ActiveSubject)

	m = send(t, m, runes("1"))
	assert.Contains(t, m.View(), "A quarter turn.")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, quiz.ScreenLanding, m.view.Screen)
}

func TestModelTimedFlow(t *testing.T) {
	m := newModel(t, quiz.Options{Timed: true, TimerSeconds: 90})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, quiz.ScreenSubjectSelect, m.view.Screen)
	assert.Contains(t, m.View(), "Geometry")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, quiz.ScreenQuestion, m.view.Screen)
	assert.Equal(t, "Algebra", m.view.ActiveSubject)
	assert.Contains(t, m.View(), "1:30 left")

	m = send(t, m, runes("s"))
	assert.Equal(t, quiz.ScreenSubjectSelect, m.view.Screen)
}

func TestModelQuit(t *testing.T) {
	m := newModel(t, quiz.Options{})
	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.(Model).View())
}

func TestKeyAction(t *testing.T) {
	landing := quiz.View{Screen: quiz.ScreenLanding}
	onQuestion := quiz.View{Screen: quiz.ScreenQuestion}
	timed := quiz.View{Screen: quiz.ScreenQuestion, Options: quiz.Options{Timed: true}}

	assert.Equal(t, quiz.ActionStart, keyAction(landing, "enter").action.Type)
	assert.Equal(t, keyNone, keyAction(landing, "n").kind)
	assert.Equal(t, quiz.ActionNext, keyAction(onQuestion, "right").action.Type)
	assert.Equal(t, quiz.ActionPrev, keyAction(onQuestion, "p").action.Type)
	assert.Equal(t, keyPickSubject, keyAction(onQuestion, "s").kind)
	assert.Equal(t, quiz.ActionBackToSubjects, keyAction(timed, "s").action.Type)
	assert.Equal(t, keyEnterNumber, keyAction(onQuestion, "g").kind)
	assert.Equal(t, keyQuit, keyAction(onQuestion, "q").kind)

	submit := keyAction(onQuestion, "4")
	require.Equal(t, quiz.ActionSubmit, submit.action.Type)
	assert.Equal(t, 3, *submit.action.Choice)
	assert.Equal(t, keyNone, keyAction(onQuestion, "0").kind)
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, describe(nil))
	assert.Equal(t, "Time is up for this question.", describe(quiz.ErrTimeExpired))
	assert.Equal(t, "This question cannot be graded: answer is missing",
		describe(&question.MalformedQuestionError{Subject: "A", Problem: "answer is missing"}))
}
