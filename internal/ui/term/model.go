package term

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gokatarajesh/math-quiz/internal/quiz"
)

// Quiz is the part of quiz.Service the terminal drives.
type Quiz interface {
	View(ctx context.Context, id string) (quiz.View, error)
	Apply(ctx context.Context, id string, action quiz.Action) (quiz.View, error)
}

// Model renders one quiz session in the terminal using Bubble Tea.
type Model struct {
	quiz         Quiz
	view         quiz.View
	subjects     table.Model
	picking      bool
	entry        string
	entering     bool
	message      string
	tickInterval time.Duration
	noColor      bool
	quitting     bool
}

// Options configures the terminal model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
}

// NewModel constructs a model for an already created session.
func NewModel(q Quiz, initial quiz.View, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	t := table.New(
		table.WithColumns(subjectColumns()),
		table.WithRows(subjectRows(initial.Subjects)),
		table.WithFocused(true),
		table.WithHeight(8),
		table.WithWidth(60),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	return Model{
		quiz:         q,
		view:         initial,
		subjects:     t,
		tickInterval: tickInterval,
		noColor:      opts.NoColor,
	}
}

// Init starts the timer poll.
func (m Model) Init() tea.Cmd {
	return tick(m.tickInterval)
}

// Update handles keys, service replies and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.subjects.SetWidth(min(typed.Width, 60))
		m.subjects.SetHeight(max(min(typed.Height/3, 10), 3))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case viewMsg:
		m = m.applyView(typed)
		return m, nil
	case tickMsg:
		if m.view.Timer == nil {
			return m, tick(m.tickInterval)
		}
		return m, tea.Batch(m.refresh(), tick(m.tickInterval))
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	parts := []string{renderHeader(m.view, m.noColor)}
	if notice := renderNotice(m.view, m.noColor); notice != "" {
		parts = append(parts, notice)
	}

	switch {
	case m.view.Screen == quiz.ScreenLanding:
		parts = append(parts, renderLanding(m.view, m.noColor))
	case m.view.Screen == quiz.ScreenSubjectSelect || m.picking:
		parts = append(parts, "Choose a subject:", m.subjects.View())
	default:
		parts = append(parts, renderQuestion(m.view, m.noColor))
	}

	if m.entering {
		parts = append(parts, "Go to question: "+m.entry+"_")
	}
	if m.message != "" {
		parts = append(parts, stylize(m.message, m.noColor, lipgloss.Color("203")))
	}
	parts = append(parts, renderHelp(m.view, m.picking, m.noColor))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// viewMsg carries the result of a service call.
type viewMsg struct {
	view quiz.View
	err  error
}

// tickMsg carries a clock tick for timer polling.
type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) apply(action quiz.Action) tea.Cmd {
	q, id := m.quiz, m.view.SessionID
	return func() tea.Msg {
		view, err := q.Apply(context.Background(), id, action)
		return viewMsg{view: view, err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	q, id := m.quiz, m.view.SessionID
	return func() tea.Msg {
		view, err := q.View(context.Background(), id)
		return viewMsg{view: view, err: err}
	}
}

// applyView installs a service reply. Rejected actions still carry the
// current view, so the screen stays usable and the message is shown.
func (m Model) applyView(msg viewMsg) Model {
	if msg.view.SessionID != "" {
		m.view = msg.view
		m.subjects.SetRows(subjectRows(msg.view.Subjects))
		if m.view.Screen != quiz.ScreenQuestion {
			m.picking = false
		}
	}
	m.message = describe(msg.err)
	return m
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.entering {
		return m.handleEntry(key)
	}

	if m.view.Screen == quiz.ScreenSubjectSelect || m.picking {
		switch key.String() {
		case "enter":
			subject, ok := m.selectedSubject()
			if !ok {
				return m, nil
			}
			actionType := quiz.ActionBegin
			if m.picking {
				actionType = quiz.ActionSelectSubject
				m.picking = false
			}
			return m, m.apply(quiz.Action{Type: actionType, Subject: subject})
		case "esc":
			if m.picking {
				m.picking = false
				return m, nil
			}
			return m, m.apply(quiz.Action{Type: quiz.ActionReturn})
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.subjects, cmd = m.subjects.Update(key)
		return m, cmd
	}

	act := keyAction(m.view, key.String())
	switch act.kind {
	case keyQuit:
		m.quitting = true
		return m, tea.Quit
	case keyPickSubject:
		m.picking = true
		m.message = ""
		return m, nil
	case keyEnterNumber:
		m.entering = true
		m.entry = ""
		return m, nil
	case keyApply:
		return m, m.apply(act.action)
	}
	return m, nil
}

func (m Model) handleEntry(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		m.entering = false
		n, ok := parseNumber(m.entry)
		if !ok {
			m.message = "Enter a question number."
			return m, nil
		}
		index := n - 1
		return m, m.apply(quiz.Action{Type: quiz.ActionGoto, Index: &index})
	case tea.KeyEsc:
		m.entering = false
		return m, nil
	case tea.KeyBackspace:
		if len(m.entry) > 0 {
			m.entry = m.entry[:len(m.entry)-1]
		}
		return m, nil
	case tea.KeyRunes:
		for _, r := range key.Runes {
			if r >= '0' && r <= '9' && len(m.entry) < 4 {
				m.entry += string(r)
			}
		}
	}
	return m, nil
}

func (m Model) selectedSubject() (string, bool) {
	row := m.subjects.SelectedRow()
	if len(row) == 0 {
		return "", false
	}
	return row[0], true
}
